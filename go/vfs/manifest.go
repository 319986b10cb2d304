package vfs

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileMode is a permission mode written in octal, like 0644 or 0o644.
type FileMode uint32

func (m *FileMode) UnmarshalYAML(value *yaml.Node) error {
	s := strings.TrimPrefix(strings.TrimPrefix(value.Value, "0o"), "0O")
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return errors.Errorf("line %d: bad mode %q", value.Line, value.Value)
	}
	*m = FileMode(n)
	return nil
}

func (m FileMode) MarshalYAML() (interface{}, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: "0" + strconv.FormatUint(uint64(m), 8)}, nil
}

type ManifestFile struct {
	Path   string            `yaml:"path"`
	Dir    bool              `yaml:"dir,omitempty"`
	Mode   *FileMode         `yaml:"mode,omitempty"`
	Data   string            `yaml:"data,omitempty"`
	Xattrs map[string]string `yaml:"xattrs,omitempty"`
}

func (f *ManifestFile) mode(def uint32) uint32 {
	if f.Mode == nil {
		return def
	}
	return uint32(*f.Mode)
}

// Manifest describes the initial contents of a MemFS.
type Manifest struct {
	Files []ManifestFile `yaml:"files"`
}

func LoadManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decoding manifest")
	}
	return &m, nil
}

// Apply creates every entry of m in fs, parents first.
func (m *Manifest) Apply(fs *MemFS) error {
	for _, f := range m.Files {
		if f.Path == "" {
			return errors.New("manifest entry without a path")
		}
		var err error
		if f.Dir {
			err = fs.Mkdir(f.Path, f.mode(0755))
		} else {
			err = fs.WriteFile(f.Path, []byte(f.Data), f.mode(0644))
		}
		if err != nil {
			return errors.Wrapf(err, "creating %s", f.Path)
		}
		for name, value := range f.Xattrs {
			if err := fs.SetXattr(f.Path, name, []byte(value)); err != nil {
				return errors.Wrapf(err, "setting %s on %s", name, f.Path)
			}
		}
	}
	return nil
}

// Manifest describes fs as it is now. The root directory is left out.
func (fs *MemFS) Manifest() *Manifest {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	m := &Manifest{}
	fs.tree.Ascend(func(n *memNode) bool {
		if n.path == "/" {
			return true
		}
		mode := FileMode(n.mode & 07777)
		f := ManifestFile{
			Path: n.path,
			Dir:  n.isDir(),
			Mode: &mode,
			Data: string(n.data),
		}
		if len(n.xattrs) > 0 {
			f.Xattrs = make(map[string]string, len(n.xattrs))
			for k, v := range n.xattrs {
				f.Xattrs[k] = string(v)
			}
		}
		m.Files = append(m.Files, f)
		return true
	})
	return m
}

// Dump writes fs as a YAML manifest.
func (fs *MemFS) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fs.Manifest()); err != nil {
		return errors.Wrap(err, "encoding manifest")
	}
	return enc.Close()
}

// SplitXattrs splits a listxattr buffer into sorted names.
func SplitXattrs(buf []byte) []string {
	var names []string
	for _, s := range strings.Split(string(buf), "\x00") {
		if s != "" {
			names = append(names, s)
		}
	}
	sort.Strings(names)
	return names
}
