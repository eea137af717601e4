package directory

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tbourn/go-presence-analyzer/internal/domain"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<intranet>
  <server>
    <host>intranet.example.com</host>
    <port>443</port>
    <protocol>https</protocol>
  </server>
  <users>
    <user id="10">
      <avatar>/api/images/users/10</avatar>
      <name>Anna K.</name>
    </user>
    <user id="11">
      <avatar>/api/images/users/11</avatar>
      <name>Maciej D.</name>
    </user>
    <user>
      <avatar>/api/images/users/99</avatar>
      <name>No Id</name>
    </user>
  </users>
</intranet>`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "users.xml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	return p
}

func TestParse_UsersAndServer(t *testing.T) {
	d, err := Parse(strings.NewReader(sampleXML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(d.Users) != 2 {
		t.Fatalf("expected 2 users (id-less entry ignored), got %d", len(d.Users))
	}
	want := domain.IdentityEntry{Name: "Maciej D.", Avatar: "/api/images/users/11"}
	if got := d.Users["11"]; got != want {
		t.Fatalf("user 11 = %+v, want %+v", got, want)
	}
	host, err := d.ResolveHost()
	if err != nil {
		t.Fatalf("ResolveHost: %v", err)
	}
	if host != "https://intranet.example.com" {
		t.Fatalf("host = %q", host)
	}
}

func TestParse_MalformedIsSourceError(t *testing.T) {
	for _, in := range []string{"", "<intranet><users>", "not xml at all"} {
		if _, err := Parse(strings.NewReader(in)); !errors.Is(err, domain.ErrDataSource) {
			t.Errorf("Parse(%q) err = %v, want ErrDataSource", in, err)
		}
	}
}

func TestResolveHost_MissingServer(t *testing.T) {
	d, err := Parse(strings.NewReader(`<intranet><users/></intranet>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = d.ResolveHost()
	if !errors.Is(err, domain.ErrDataSource) || !errors.Is(err, ErrNoServer) {
		t.Fatalf("expected ErrDataSource wrapping ErrNoServer, got %v", err)
	}

	d, _ = Parse(strings.NewReader(`<intranet><server><host>h</host></server></intranet>`))
	if _, err := d.ResolveHost(); !errors.Is(err, ErrNoServer) {
		t.Fatalf("missing protocol must fail, got %v", err)
	}

	var nilDir *Directory
	if _, err := nilDir.ResolveHost(); !errors.Is(err, ErrNoServer) {
		t.Fatalf("nil directory must fail, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	d, err := Load(writeTemp(t, sampleXML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(d.Users) != 2 {
		t.Fatalf("unexpected users: %v", d.Users)
	}

	missing := filepath.Join(t.TempDir(), "missing.xml")
	_, err = Load(missing)
	var se *domain.SourceError
	if !errors.As(err, &se) || se.Path != missing || se.Source != SourceName {
		t.Fatalf("expected SourceError for missing file, got %v", err)
	}

	bad := writeTemp(t, "<broken")
	_, err = Load(bad)
	if !errors.As(err, &se) || se.Path != bad {
		t.Fatalf("expected SourceError carrying path for malformed file, got %v", err)
	}
}

func TestMerge(t *testing.T) {
	users := map[string]domain.IdentityEntry{
		"11": {Name: "Maciej D.", Avatar: "/api/images/users/11"},
		"99": {Name: "Unused", Avatar: "/x"},
	}
	got := Merge([]int{10, 11}, users)
	want := map[int]domain.IdentityEntry{
		10: {Name: "User 10", Avatar: "/api/images/users/00"},
		11: {Name: "Maciej D.", Avatar: "/api/images/users/11"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Merge = %v, want %v", got, want)
	}

	if out := Merge(nil, users); len(out) != 0 {
		t.Fatalf("no ids must produce an empty result, got %v", out)
	}
	if out := Merge([]int{5}, nil); out[5] != domain.DefaultIdentity(5) {
		t.Fatalf("nil directory must fall back to defaults, got %v", out)
	}
}
