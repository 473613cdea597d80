package resource

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestThresholdMeets(t *testing.T) {
	th := DefaultThreshold()
	tests := []struct {
		name string
		rec  NodeRecord
		want bool
	}{
		{
			name: "all thresholds satisfied",
			rec:  NodeRecord{CPUsAvailable: intPtr(4), MemoryAvailableGB: floatPtr(8.0), GPUsAvailable: 1},
			want: true,
		},
		{
			name: "memory exactly at minimum",
			rec:  NodeRecord{CPUsAvailable: intPtr(1), MemoryAvailableGB: floatPtr(6.0), GPUsAvailable: 2},
			want: true,
		},
		{
			name: "no free gpus",
			rec:  NodeRecord{CPUsAvailable: intPtr(64), MemoryAvailableGB: floatPtr(500), GPUsAvailable: 0},
			want: false,
		},
		{
			name: "no free cpus",
			rec:  NodeRecord{CPUsAvailable: intPtr(0), MemoryAvailableGB: floatPtr(500), GPUsAvailable: 4},
			want: false,
		},
		{
			name: "not enough memory",
			rec:  NodeRecord{CPUsAvailable: intPtr(8), MemoryAvailableGB: floatPtr(5.9), GPUsAvailable: 4},
			want: false,
		},
		{
			name: "unknown cpus",
			rec:  NodeRecord{MemoryAvailableGB: floatPtr(100), GPUsAvailable: 4},
			want: false,
		},
		{
			name: "unknown memory",
			rec:  NodeRecord{CPUsAvailable: intPtr(8), GPUsAvailable: 4},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, th.Meets(tt.rec))
		})
	}
}

func TestFilterKeepsOrder(t *testing.T) {
	records := []NodeRecord{
		{Node: "a", CPUsAvailable: intPtr(4), MemoryAvailableGB: floatPtr(8), GPUsAvailable: 1},
		{Node: "b", CPUsAvailable: intPtr(4), MemoryAvailableGB: floatPtr(8), GPUsAvailable: 0},
		{Node: "c", CPUsAvailable: intPtr(16), MemoryAvailableGB: floatPtr(64), GPUsAvailable: 8},
	}

	got := Filter(records, DefaultThreshold())
	assert.Equal(t, 2, len(got))
	assert.Equal(t, "a", got[0].Node)
	assert.Equal(t, "c", got[1].Node)

	strict := Threshold{MinGPUs: 4, MinCPUs: 8, MinMemoryGB: 32}
	got = Filter(records, strict)
	assert.Equal(t, 1, len(got))
	assert.Equal(t, "c", got[0].Node)

	assert.Equal(t, 0, len(Filter(nil, DefaultThreshold())))
}
