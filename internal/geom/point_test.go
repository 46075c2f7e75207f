package geom

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointArithmetic(t *testing.T) {
	p := Pt(3, 4)
	q := Pt(1, 1)

	assert.Equal(t, Pt(4, 5), p.Add(q))
	assert.Equal(t, Pt(2, 3), p.Sub(q))
	assert.Equal(t, Pt(6, 8), p.Scale(2))
	assert.InDelta(t, 5.0, p.Dist(Pt(0, 0)), 1e-12)
	assert.True(t, p.ApproxEqual(Pt(3.0000001, 4), 1e-6))
	assert.False(t, p.ApproxEqual(Pt(3.1, 4), 1e-6))
}

func TestPointJSONIsPair(t *testing.T) {
	data, err := json.Marshal(Pt(100, 140.5))
	require.NoError(t, err)
	assert.JSONEq(t, `[100, 140.5]`, string(data))

	var p Point
	require.NoError(t, json.Unmarshal([]byte(`[7, -2]`), &p))
	assert.Equal(t, Pt(7, -2), p)

	assert.Error(t, json.Unmarshal([]byte(`{"x": 1}`), &p))
}

func TestPathLengthAndConversion(t *testing.T) {
	path := Path{Pt(0, 0), Pt(3, 4), Pt(3, 10)}
	assert.InDelta(t, 11.0, path.Length(), 1e-9)
	assert.Zero(t, Path{Pt(1, 1)}.Length())

	back := PathFromLineString(path.LineString())
	assert.Equal(t, path, back)

	clone := path.Clone()
	clone[0] = Pt(math.Pi, 0)
	assert.Equal(t, Pt(0, 0), path[0])
	assert.Nil(t, Path(nil).Clone())
}
