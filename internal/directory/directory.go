// Package directory reads the intranet user directory, an XML document of the
// form:
//
//	<intranet>
//	  <server>
//	    <host>intranet.example.com</host>
//	    <port>443</port>
//	    <protocol>https</protocol>
//	  </server>
//	  <users>
//	    <user id="141">
//	      <avatar>/api/images/users/141</avatar>
//	      <name>Adam P.</name>
//	    </user>
//	  </users>
//	</intranet>
//
// The file is replaced atomically by the fetch job, so a reader always sees
// either the old or the new document.
package directory

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tbourn/go-presence-analyzer/internal/domain"
)

// SourceName identifies the directory source in domain.SourceError values.
const SourceName = "directory"

// ErrNoServer is wrapped when the document has no usable <server> node.
var ErrNoServer = errors.New("server node missing")

// Server is the intranet endpoint photos are served from.
type Server struct {
	Host     string `xml:"host"`
	Port     string `xml:"port"`
	Protocol string `xml:"protocol"`
}

type userNode struct {
	ID     string `xml:"id,attr"`
	Avatar string `xml:"avatar"`
	Name   string `xml:"name"`
}

type document struct {
	Server *Server    `xml:"server"`
	Users  []userNode `xml:"users>user"`
}

// Directory is a parsed snapshot of the directory source.
type Directory struct {
	Server *Server
	Users  map[string]domain.IdentityEntry // keyed by the external id string
}

// Load reads and parses the directory file at path.
func Load(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.SourceError{Source: SourceName, Path: path, Err: err}
	}
	defer f.Close()

	d, err := Parse(f)
	if err != nil {
		var se *domain.SourceError
		if errors.As(err, &se) {
			se.Path = path
		}
		return nil, err
	}
	return d, nil
}

// Parse decodes a directory document. Malformed XML is a data source error.
// Users without an id attribute are ignored.
func Parse(r io.Reader) (*Directory, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &domain.SourceError{Source: SourceName, Err: fmt.Errorf("decode: %w", err)}
	}
	users := make(map[string]domain.IdentityEntry, len(doc.Users))
	for _, u := range doc.Users {
		id := strings.TrimSpace(u.ID)
		if id == "" {
			continue
		}
		users[id] = domain.IdentityEntry{
			Name:   strings.TrimSpace(u.Name),
			Avatar: strings.TrimSpace(u.Avatar),
		}
	}
	return &Directory{Server: doc.Server, Users: users}, nil
}

// ResolveHost returns the base URL "{protocol}://{host}" photos are served
// from. It fails with a data source error when the server node is absent or
// incomplete.
func (d *Directory) ResolveHost() (string, error) {
	if d == nil || d.Server == nil {
		return "", &domain.SourceError{Source: SourceName, Err: ErrNoServer}
	}
	host := strings.TrimSpace(d.Server.Host)
	proto := strings.TrimSpace(d.Server.Protocol)
	if host == "" || proto == "" {
		return "", &domain.SourceError{Source: SourceName, Err: fmt.Errorf("%w: host=%q protocol=%q", ErrNoServer, host, proto)}
	}
	return proto + "://" + host, nil
}
