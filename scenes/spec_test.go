package scenes

import (
	"image/color"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedScenesLoad(t *testing.T) {
	names, err := Names()
	require.NoError(t, err)
	require.Contains(t, names, "room.yaml")
	require.Contains(t, names, "zones.yaml")

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			spec, err := LoadScene(name)
			require.NoError(t, err)
			require.NotEmpty(t, spec.Entities)

			for _, e := range spec.Entities {
				if e.Script == "" {
					continue
				}
				src, err := LoadScript(e.Script)
				require.NoError(t, err, "script for %s", e.Name)
				assert.Contains(t, string(src), "update")
			}
		})
	}
}

func TestRoomScene(t *testing.T) {
	spec, err := LoadScene("room")
	require.NoError(t, err)

	assert.Equal(t, "room", spec.Name)
	assert.Equal(t, 10.0, spec.Speed)
	require.Len(t, spec.Entities, 8)

	player, ok := spec.Entity("player")
	require.True(t, ok)
	assert.Equal(t, Vec{X: 100, Y: 100}, player.Position)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, player.Color.Color)

	wall, ok := spec.Entity("wall_left")
	require.True(t, ok)
	poly, err := wall.Collider()
	require.NoError(t, err)
	bb := poly.Bounds(wall.Position.Vector())
	assert.Equal(t, cp.BB{L: -8, B: -8, R: 8, T: 808}, bb)
}

func TestParse(t *testing.T) {
	cases := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "vector_forms",
			doc: `
name: t
entities:
  - name: a
    position: {x: 1, y: 2}
    shape: {box: {width: 2, height: 2}}
  - name: b
    position: [3, 4]
    trigger: true
    shape: {vertices: [[0, 0], [1, 0], {x: 0, y: 1}]}
`,
		},
		{name: "empty", doc: "", wantErr: "empty document"},
		{name: "unknown_field", doc: "name: t\nentities: []\ngravity: 9\n", wantErr: "gravity"},
		{
			name:    "bad_vector",
			doc:     "name: t\nentities:\n  - name: a\n    position: [1, 2, 3]\n    shape: {box: {width: 1, height: 1}}\n",
			wantErr: "2 components",
		},
		{
			name:    "no_shape",
			doc:     "name: t\nentities:\n  - name: a\n    position: [0, 0]\n",
			wantErr: "needs one of",
		},
		{
			name:    "two_shapes",
			doc:     "name: t\nentities:\n  - name: a\n    shape: {box: {width: 1, height: 1}, line: {start: [0, 0], end: [1, 0], thickness: 1}}\n",
			wantErr: "only one",
		},
		{
			name:    "too_few_vertices",
			doc:     "name: t\nentities:\n  - name: a\n    shape: {vertices: [[0, 0], [1, 1]]}\n",
			wantErr: "at least 3 vertices",
		},
		{
			name:    "degenerate_line",
			doc:     "name: t\nentities:\n  - name: a\n    shape: {line: {start: [1, 1], end: [1, 1], thickness: 4}}\n",
			wantErr: "same point",
		},
		{
			name:    "duplicate_name",
			doc:     "name: t\nentities:\n  - name: a\n    shape: {box: {width: 1, height: 1}}\n  - name: a\n    shape: {box: {width: 1, height: 1}}\n",
			wantErr: "defined twice",
		},
		{
			name:    "missing_player",
			doc:     "name: t\nplayer: hero\nentities:\n  - name: a\n    shape: {box: {width: 1, height: 1}}\n",
			wantErr: "hero",
		},
		{
			name:    "trigger_player",
			doc:     "name: t\nplayer: a\nentities:\n  - name: a\n    trigger: true\n    shape: {box: {width: 1, height: 1}}\n",
			wantErr: "must not be a trigger",
		},
		{
			name:    "nan_position",
			doc:     "name: t\nentities:\n  - name: a\n    position: [.nan, 0]\n    shape: {box: {width: 1, height: 1}}\n",
			wantErr: "position",
		},
		{
			name:    "inf_position_mapping",
			doc:     "name: t\nentities:\n  - name: a\n    position: {x: 0, y: -.inf}\n    shape: {box: {width: 1, height: 1}}\n",
			wantErr: "not finite",
		},
		{
			name:    "inf_speed",
			doc:     "name: t\nspeed: .inf\nentities:\n  - name: a\n    shape: {box: {width: 1, height: 1}}\n",
			wantErr: "speed",
		},
		{
			name:    "nan_speed",
			doc:     "name: t\nspeed: .nan\nentities:\n  - name: a\n    shape: {box: {width: 1, height: 1}}\n",
			wantErr: "not a finite number",
		},
		{
			name:    "inf_box",
			doc:     "name: t\nentities:\n  - name: a\n    shape: {box: {width: .inf, height: 1}}\n",
			wantErr: "box",
		},
		{
			name:    "nan_vertex",
			doc:     "name: t\nentities:\n  - name: a\n    shape: {vertices: [[0, 0], [1, .nan], [0, 1]]}\n",
			wantErr: "vertex 1",
		},
		{
			name:    "inf_line_end",
			doc:     "name: t\nentities:\n  - name: a\n    shape: {line: {start: [0, 0], end: [.inf, 0], thickness: 4}}\n",
			wantErr: "line",
		},
		{
			name:    "nan_line_thickness",
			doc:     "name: t\nentities:\n  - name: a\n    shape: {line: {start: [0, 0], end: [4, 0], thickness: .nan}}\n",
			wantErr: "not finite",
		},
		{
			name:    "bad_color",
			doc:     "name: t\nentities:\n  - name: a\n    color: \"#12\"\n    shape: {box: {width: 1, height: 1}}\n",
			wantErr: "invalid color",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			spec, err := Parse([]byte(c.doc))
			if c.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), c.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, spec)
		})
	}
}

func TestParseVectorForms(t *testing.T) {
	spec, err := Parse([]byte(`
name: t
entities:
  - name: a
    position: {x: 1, y: 2}
    shape: {box: {width: 2, height: 2}}
  - name: b
    position: [3, 4]
    trigger: true
    shape: {vertices: [[0, 0], [1, 0], {x: 0, y: 1}]}
`))
	require.NoError(t, err)

	assert.Equal(t, Vec{X: 1, Y: 2}, spec.Entities[0].Position)
	assert.Equal(t, Vec{X: 3, Y: 4}, spec.Entities[1].Position)

	poly, err := spec.Entities[1].Collider()
	require.NoError(t, err)
	assert.True(t, poly.IsTrigger())
	assert.Equal(t, []cp.Vector{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}, poly.Vertices())
}

func TestMarshalRoundTrip(t *testing.T) {
	spec, err := LoadScene("zones")
	require.NoError(t, err)

	data, err := spec.Marshal()
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, spec.Name, again.Name)
	require.Len(t, again.Entities, len(spec.Entities))
	for i := range spec.Entities {
		assert.Equal(t, spec.Entities[i].Position, again.Entities[i].Position)
		assert.Equal(t, spec.Entities[i].Trigger, again.Entities[i].Trigger)
	}
	pool, ok := again.Entity("pool")
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{R: 0x30, G: 0x70, B: 0xff, A: 0x60}, pool.Color.Color)
}

func TestCleanPaths(t *testing.T) {
	assert.Equal(t, "room.yaml", cleanScenePath("scenes/room"))
	assert.Equal(t, "zones.yaml", cleanScenePath("zones.yaml"))
	assert.Equal(t, "scripts/patrol.tengo", cleanScriptPath("scenes/scripts/patrol"))
	assert.Equal(t, "scripts/orbit.tengo", cleanScriptPath("orbit.tengo"))
}
