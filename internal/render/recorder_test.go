package render

import (
	"encoding/json"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pathviz/internal/geom"
)

func TestRecorderDisplayListJSON(t *testing.T) {
	r := NewRecorder(100, 50)
	r.Clear(color.White)
	r.SetStroke(color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0x80}, 2, 4, 4)
	r.StrokeCircle(geom.Pt(10, 10), 5)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"width": 100, "height": 50,
		"ops": [
			{"kind": "clear", "color": "#ffffffff"},
			{"kind": "stroke-circle", "points": [[10, 10]], "radius": 5, "width": 2, "dashes": [4, 4], "color": "#12345680"}
		]
	}`, string(data))
}

func TestEmptyRecorderEncodesEmptyOps(t *testing.T) {
	data, err := json.Marshal(NewRecorder(1, 1))
	require.NoError(t, err)
	assert.JSONEq(t, `{"width": 1, "height": 1, "ops": []}`, string(data))
	assert.Equal(t, "", HexColor(nil))
}
