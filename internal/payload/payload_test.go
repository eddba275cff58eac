package payload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	omnidim "github.com/ryu-ryuk/omnidim-go"
)

func TestLoadFileJSONAndYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "agent.json")
	yamlPath := filepath.Join(dir, "agent.yaml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"name": "Support", "enabled": true}`), 0o600))
	require.NoError(t, os.WriteFile(yamlPath, []byte("name: Support\nenabled: true\n"), 0o600))

	fromJSON, err := LoadFile(jsonPath)
	require.NoError(t, err)
	fromYAML, err := LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, fromJSON, fromYAML)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestLoadIntoTypedRequest(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "agent.yml")
	doc := "name: Support\ncontext_breakdown:\n  - title: Role\n    body: Help callers\nvoice:\n  provider: deepgram\n  voice_id: aura-asteria-en\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	var req omnidim.CreateAgentRequest
	require.NoError(t, LoadInto(path, &req))
	assert.Equal(t, "Support", req.Name)
	assert.Equal(t, []omnidim.ContextSection{{Title: "Role", Body: "Help callers"}}, req.ContextBreakdown)
	require.NotNil(t, req.Voice)
	assert.Equal(t, "deepgram", req.Voice.Provider)
}

func TestFromFileOrInline(t *testing.T) {
	t.Parallel()

	obj, err := FromFileOrInline("", `{"name": "x"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "x"}, obj)

	_, err = FromFileOrInline("", "")
	require.Error(t, err)

	_, err = FromFileOrInline("", `[1, 2]`)
	require.Error(t, err)
}

func TestParseContext(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]omnidim.ContextSection{{Title: "Purpose", Body: "Take pizza orders"}},
		ParseContext("Take pizza orders"))
	assert.Equal(t,
		[]omnidim.ContextSection{{Title: "Menu", Body: "Margherita"}},
		ParseContext(`[{"title": "Menu", "body": "Margherita"}]`))
	assert.Equal(t,
		[]omnidim.ContextSection{{Title: "Purpose", Body: `{"title": "x"}`}},
		ParseContext(`{"title": "x"}`))
	assert.Nil(t, ParseContext("  "))
}

func TestParseIDs(t *testing.T) {
	t.Parallel()

	ids, err := ParseIDs("1, 2,3,")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids)

	for _, bad := range []string{"", "a", "1,-2", "0"} {
		if _, err := ParseIDs(bad); err == nil {
			t.Fatalf("ParseIDs(%q): expected error", bad)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "+1 555-123-4567", want: "+15551234567"},
		{in: "+4420794600", want: "+4420794600"},
		{in: "", wantErr: true},
		{in: "15551234567", wantErr: true},
		{in: "+12345", wantErr: true},
		{in: "+1234567890123456", wantErr: true},
		{in: "+1555abc4567", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ValidatePhone(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ValidatePhone(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ValidatePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadPDF(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pdf := filepath.Join(dir, "Menu.PDF")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4"), 0o600))

	doc, err := ReadPDF(pdf)
	require.NoError(t, err)
	assert.Equal(t, "Menu.PDF", doc.Name)
	assert.EqualValues(t, 8, doc.Size)
	assert.Equal(t, "JVBERi0xLjQ=", doc.Data)

	_, err = ReadPDF(filepath.Join(dir, "notes.txt"))
	require.Error(t, err)
	_, err = ReadPDF(filepath.Join(dir, "missing.pdf"))
	require.Error(t, err)
}

func TestUploadAllowed(t *testing.T) {
	t.Parallel()

	ok, _ := UploadAllowed(map[string]any{"can_upload": true, "success": false})
	assert.True(t, ok)

	ok, msg := UploadAllowed(map[string]any{"success": false})
	assert.False(t, ok)
	assert.Equal(t, "upload not allowed", msg)

	ok, msg = UploadAllowed(map[string]any{"can_upload": false, "message": "quota exceeded"})
	assert.False(t, ok)
	assert.Equal(t, "quota exceeded", msg)
}
