package web

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTemplatesParse(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)
	for _, name := range []string{"home.html", "register.html", "login.html", "secrets.html", "submit.html"} {
		require.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestSecretsViewEscapesContent(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	data := map[string]interface{}{
		"CSRF":    "tok",
		"User":    nil,
		"Secrets": []map[string]string{{"Author": "alice", "Secret": "<script>cat</script>"}},
	}
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "secrets.html", data))
	out := buf.String()
	require.Contains(t, out, "&lt;script&gt;cat&lt;/script&gt;")
	require.Contains(t, out, "alice")
	require.NotContains(t, out, "/logout")
}

func TestStaticServesStylesheet(t *testing.T) {
	f, err := Static().Open("styles.css")
	require.NoError(t, err)
	defer f.Close()
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Contains(t, string(b), ".secret-text")
}

func TestCopyDoesNotPromiseAnonymity(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	data := map[string]interface{}{
		"CSRF":    "tok",
		"User":    map[string]string{"Secret": ""},
		"Secrets": []map[string]string{{"Author": "alice@example.com", "Secret": "cat"}},
	}
	for _, name := range []string{"home.html", "submit.html", "secrets.html"} {
		var buf bytes.Buffer
		require.NoError(t, tmpl.ExecuteTemplate(&buf, name, data), name)
		require.NotContains(t, strings.ToLower(buf.String()), "anonymous", name)
	}
}
