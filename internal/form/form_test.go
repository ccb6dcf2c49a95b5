package form

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
// CSRF
//

func testKey() string {
	return base64.RawURLEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
}

func TestCSRF_RoundTrip(t *testing.T) {
	c := NewCSRF(testKey())
	tok, err := c.Token()
	require.NoError(t, err)
	assert.True(t, c.Verify(tok))

	other := NewCSRF(base64.RawURLEncoding.EncodeToString([]byte("ffffffffffffffffffffffffffffffff")))
	assert.False(t, other.Verify(tok), "different secret")
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	assert.False(t, c.Verify(base64.RawURLEncoding.EncodeToString(raw)), "tampered signature")
	assert.False(t, c.Verify("not-base64!"))
	assert.False(t, c.Verify(""))
}

func TestCSRF_Expiry(t *testing.T) {
	c := NewCSRF(testKey())
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return issued }
	tok, err := c.Token()
	require.NoError(t, err)

	c.now = func() time.Time { return issued.Add(MaxAge - time.Second) }
	assert.True(t, c.Verify(tok))

	c.now = func() time.Time { return issued.Add(MaxAge + time.Second) }
	assert.False(t, c.Verify(tok))

	c.now = func() time.Time { return issued.Add(-2 * time.Minute) }
	assert.False(t, c.Verify(tok), "issued in the future")
}

func TestCSRF_ShortKeyFallsBackToRandom(t *testing.T) {
	a, b := NewCSRF("short"), NewCSRF("")
	tok, err := a.Token()
	require.NoError(t, err)
	assert.True(t, a.Verify(tok))
	assert.False(t, b.Verify(tok))
}

func TestCSRF_Middleware(t *testing.T) {
	c := NewCSRF(testKey())
	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(method, token string) int {
		form := url.Values{}
		if token != "" {
			form.Set(FieldCSRF, token)
		}
		req := httptest.NewRequest(method, "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	tok, err := c.Token()
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, serve(http.MethodGet, ""))
	assert.Equal(t, http.StatusForbidden, serve(http.MethodPost, ""))
	assert.Equal(t, http.StatusForbidden, serve(http.MethodPost, "bogus"))
	assert.Equal(t, http.StatusNoContent, serve(http.MethodPost, tok))
}

//
// definitions
//

const createYAML = `
id: players/create
title: Create player
fields:
  - name: name
    label: Name
    type: text
    required: true
    maxlength: 12
  - name: level
    label: Level
    type: number
    min: 0
    max: 100
  - name: race
    label: Race
    type: select
    options_from: races
  - name: banned
    label: Banned
    type: checkbox
`

func TestLoadDir(t *testing.T) {
	fsys := fstest.MapFS{
		"forms/create.yaml": {Data: []byte(createYAML)},
		"forms/README.md":   {Data: []byte("ignored")},
	}
	set, err := LoadDir(fsys, "forms")
	require.NoError(t, err)
	require.Contains(t, set, "players/create")

	fd := set["players/create"]
	require.NoError(t, fd.ResolveOptions(map[string][]string{"races": {"HUMAN", "ELF"}}))

	race, ok := fd.Field("race")
	require.True(t, ok)
	assert.Equal(t, []string{"HUMAN", "ELF"}, race.Options)

	assert.Error(t, fd.ResolveOptions(map[string][]string{}))
}

func TestLoadDir_DuplicateID(t *testing.T) {
	fsys := fstest.MapFS{
		"forms/a.yaml": {Data: []byte(createYAML)},
		"forms/b.yaml": {Data: []byte(createYAML)},
	}
	_, err := LoadDir(fsys, "forms")
	assert.ErrorContains(t, err, "duplicate form id")
}

func TestParseFormDef_StructuralErrors(t *testing.T) {
	cases := map[string]string{
		"missing id":       "fields: [{name: a, label: A, type: text}]",
		"no fields":        "id: x",
		"missing label":    "id: x\nfields: [{name: a, type: text}]",
		"unknown type":     "id: x\nfields: [{name: a, label: A, type: radio}]",
		"duplicate field":  "id: x\nfields: [{name: a, label: A, type: text}, {name: a, label: B, type: text}]",
		"bad regex":        "id: x\nfields: [{name: a, label: A, type: text, pattern: '('}]",
		"min over max":     "id: x\nfields: [{name: a, label: A, type: number, min: 5, max: 1}]",
		"select no option": "id: x\nfields: [{name: a, label: A, type: select}]",
	}
	for name, doc := range cases {
		_, err := ParseFormDef([]byte(doc), name)
		assert.Error(t, err, name)
	}
}

//
// renderer
//

func TestControl_SelectMarksCurrentValue(t *testing.T) {
	f := FieldDef{Name: "race", Label: "Race", Type: "select", Options: []string{"HUMAN", "ELF"}}
	out, err := Control(f, "ELF", "row-7")
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, `id="fld-row-7-race" name="race" form="row-7"`)
	assert.Contains(t, s, `<option value="ELF" selected>ELF</option>`)
	assert.Contains(t, s, `<option value="HUMAN">HUMAN</option>`)
}

func TestControl_TextEscapesValue(t *testing.T) {
	f := FieldDef{Name: "name", Label: "Name", Type: "text", MaxLength: 12, Required: true}
	out, err := Control(f, `<b>"x"</b>`, "")
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, `id="fld-name"`)
	assert.Contains(t, s, ` required`)
	assert.Contains(t, s, ` maxlength="12"`)
	assert.Contains(t, s, `value="&lt;b&gt;&#34;x&#34;&lt;/b&gt;"`)
	assert.NotContains(t, s, "form=")
}

func TestControl_Checkbox(t *testing.T) {
	f := FieldDef{Name: "banned", Label: "Banned", Type: "checkbox"}

	on, err := Control(f, "true", "row-1")
	require.NoError(t, err)
	assert.Contains(t, string(on), " checked")

	off, err := Control(f, "false", "row-1")
	require.NoError(t, err)
	assert.NotContains(t, string(off), " checked")
}

func TestField_WrapsWithLabel(t *testing.T) {
	lo, hi := 0, 100
	f := FieldDef{Name: "level", Label: "Level", Type: "number", Min: &lo, Max: &hi}
	out, err := Field(f, "", "create")
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, `<label for="fld-create-level">Level</label>`)
	assert.Contains(t, s, ` min="0" max="100"`)
	assert.True(t, strings.HasPrefix(s, `<div class="form-field">`))

	_, err = Field(FieldDef{Name: "x", Label: "X", Type: "radio"}, "", "")
	assert.Error(t, err)
}
