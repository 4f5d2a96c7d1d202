package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/taihartman/splitledger/internal/models"
)

func TestRoundToStep(t *testing.T) {
	tests := []struct {
		name  string
		value string
		step  string
		mode  models.RoundingMode
		want  string
	}{
		{"half up rounds the half cent away", "8.165", "0.01", models.RoundHalfUp, "8.17"},
		{"half up below the half cent", "8.164", "0.01", models.RoundHalfUp, "8.16"},
		{"half even rounds to the even neighbor", "8.165", "0.01", models.RoundHalfEven, "8.16"},
		{"half even rounds up to the even neighbor", "8.175", "0.01", models.RoundHalfEven, "8.18"},
		{"down truncates toward zero", "8.169", "0.01", models.RoundDown, "8.16"},
		{"whole unit step", "1234.56", "1", models.RoundHalfUp, "1235"},
		{"whole unit step down", "1234.56", "1", models.RoundDown, "1234"},
		{"mil step", "0.12345", "0.001", models.RoundHalfUp, "0.123"},
		{"nickel step", "0.13", "0.05", models.RoundHalfUp, "0.15"},
		{"nickel step down", "0.14", "0.05", models.RoundDown, "0.10"},
		{"negative value half up", "-8.165", "0.01", models.RoundHalfUp, "-8.17"},
		{"exact multiple is unchanged", "8.16", "0.01", models.RoundHalfEven, "8.16"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundToStep(dec(t, tt.value), dec(t, tt.step), tt.mode)
			if !got.Equal(dec(t, tt.want)) {
				t.Errorf("roundToStep(%s, %s, %s) = %s, want %s", tt.value, tt.step, tt.mode, got, tt.want)
			}
		})
	}
}

func TestDistributeResidual(t *testing.T) {
	step := decimal.New(1, -2)

	decMap := func(t *testing.T, pairs map[string]string) map[string]decimal.Decimal {
		t.Helper()
		out := make(map[string]decimal.Decimal, len(pairs))
		for k, v := range pairs {
			out[k] = dec(t, v)
		}
		return out
	}

	tests := []struct {
		name     string
		rounded  map[string]string
		raw      map[string]string
		residual string
		policy   models.RemainderPolicy
		payerID  string
		want     map[string]string
		wantErr  bool
	}{
		{
			name:     "positive residual goes to the largest share",
			rounded:  map[string]string{"a": "1.03", "b": "0.03", "c": "0.03"},
			raw:      map[string]string{"a": "1.0333", "b": "0.0333", "c": "0.0333"},
			residual: "0.01",
			policy:   models.RemainderToLargestShare,
			want:     map[string]string{"a": "1.04", "b": "0.03", "c": "0.03"},
		},
		{
			name:     "positive residual goes to the smallest share",
			rounded:  map[string]string{"a": "1.03", "b": "0.03", "c": "0.03"},
			raw:      map[string]string{"a": "1.0333", "b": "0.0333", "c": "0.0334"},
			residual: "0.01",
			policy:   models.RemainderToSmallestShare,
			want:     map[string]string{"a": "1.03", "b": "0.04", "c": "0.03"},
		},
		{
			name:     "ties break by participant ID",
			rounded:  map[string]string{"x": "0.33", "m": "0.33", "z": "0.33"},
			raw:      map[string]string{"x": "0.3333", "m": "0.3333", "z": "0.3333"},
			residual: "0.01",
			policy:   models.RemainderToLargestShare,
			want:     map[string]string{"m": "0.34", "x": "0.33", "z": "0.33"},
		},
		{
			name:     "multi unit residual cycles through participants",
			rounded:  map[string]string{"a": "0.33", "b": "0.33", "c": "0.33"},
			raw:      map[string]string{"a": "0.34", "b": "0.335", "c": "0.33"},
			residual: "0.02",
			policy:   models.RemainderToLargestShare,
			want:     map[string]string{"a": "0.34", "b": "0.34", "c": "0.33"},
		},
		{
			name:     "negative residual subtracts a unit",
			rounded:  map[string]string{"a": "8.17", "b": "8.17"},
			raw:      map[string]string{"a": "8.165625", "b": "8.165625"},
			residual: "-0.01",
			policy:   models.RemainderToLargestShare,
			want:     map[string]string{"a": "8.16", "b": "8.17"},
		},
		{
			name:     "payer takes the full residual in one move",
			rounded:  map[string]string{"a": "0.33", "b": "0.33", "c": "0.33"},
			raw:      map[string]string{"a": "0.3333", "b": "0.3333", "c": "0.3333"},
			residual: "0.01",
			policy:   models.RemainderToPayer,
			payerID:  "c",
			want:     map[string]string{"a": "0.33", "b": "0.33", "c": "0.34"},
		},
		{
			name:     "residual not at step precision is an invariant failure",
			rounded:  map[string]string{"a": "1.00"},
			raw:      map[string]string{"a": "1.005"},
			residual: "0.005",
			policy:   models.RemainderToLargestShare,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := distributeResidual(decMap(t, tt.rounded), decMap(t, tt.raw), dec(t, tt.residual), step, tt.policy, tt.payerID)
			if (err != nil) != tt.wantErr {
				t.Fatalf("distributeResidual() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			for userID, want := range tt.want {
				if !got[userID].Equal(dec(t, want)) {
					t.Errorf("%s = %s, want %s", userID, got[userID], want)
				}
			}
		})
	}
}

func TestByRawTotal(t *testing.T) {
	raw := map[string]decimal.Decimal{
		"alice":   decimal.NewFromInt(30),
		"bob":     decimal.NewFromInt(50),
		"charlie": decimal.NewFromInt(30),
	}
	ids := []string{"charlie", "bob", "alice"}

	largest := byRawTotal(ids, raw, true)
	wantLargest := []string{"bob", "alice", "charlie"}
	for i, id := range wantLargest {
		if largest[i] != id {
			t.Errorf("largest-first[%d] = %s, want %s", i, largest[i], id)
		}
	}

	smallest := byRawTotal(ids, raw, false)
	wantSmallest := []string{"alice", "charlie", "bob"}
	for i, id := range wantSmallest {
		if smallest[i] != id {
			t.Errorf("smallest-first[%d] = %s, want %s", i, smallest[i], id)
		}
	}
}
