package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/hbond-profiler/pkg/errors"
)

func TestDistance(t *testing.T) {
	t.Parallel()
	a := heavyAtom("N", vec(0, 0, 0), 1)
	b := heavyAtom("O", vec(3, 4, 0), 2)
	assert.InDelta(t, 5.0, Distance(a, b), 1e-12)
	assert.InDelta(t, 5.0, Distance(b, a), 1e-12)
}

func TestVertexAngle(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		p, q    [3]float64
		vertex  [3]float64
		want    float64
		wantErr bool
	}{
		{name: "linear", p: [3]float64{-1, 0, 0}, q: [3]float64{1.8, 0, 0}, want: 180},
		{name: "right angle", p: [3]float64{1, 0, 0}, q: [3]float64{0, 2, 0}, want: 90},
		{name: "same direction", p: [3]float64{1, 0, 0}, q: [3]float64{3, 0, 0}, want: 0},
		{name: "sixty", p: [3]float64{1, 0, 0}, q: [3]float64{0.5, 0.8660254037844386, 0}, want: 60},
		{name: "degenerate p", p: [3]float64{0, 0, 0}, q: [3]float64{1, 0, 0}, wantErr: true},
		{name: "degenerate q", p: [3]float64{1, 0, 0}, q: [3]float64{0, 0, 0}, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := VertexAngle(vec(tt.p[0], tt.p[1], tt.p[2]), vec(tt.q[0], tt.q[1], tt.q[2]),
				vec(tt.vertex[0], tt.vertex[1], tt.vertex[2]))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeDegenerateGeometry))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestAngle_MeasuredAtHydrogen(t *testing.T) {
	t.Parallel()
	n := heavyAtom("N", vec(0, 0, 0), 1)
	o := heavyAtom("O", vec(2.8, 0, 0), 2)
	h := &testAtom{pos: vec(1, 0, 0), elem: "H"}
	got, err := Angle(n, o, h)
	require.NoError(t, err)
	assert.InDelta(t, 180.0, got, 1e-9)
}

//Personal.AI order the ending
