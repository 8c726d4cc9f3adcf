package model

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Save writes every parameter of every layer, in registration order, as raw
// native-endian float64 values. There is no header and no metadata: the
// file can only be loaded into a model with the same layers.
func (m *Model) Save(w io.Writer) error {
	for _, n := range m.nodes {
		params := n.layer.Params()
		if len(params) == 0 {
			continue
		}
		if err := binary.Write(w, binary.NativeEndian, params); err != nil {
			return errors.Wrapf(err, "save %q: layer %q", m.name, n.layer.Name())
		}
	}
	return nil
}

// Load reads parameters written by Save into the layers of m, in
// registration order. A short stream yields io.ErrUnexpectedEOF; trailing
// bytes are logged and ignored.
func (m *Model) Load(r io.Reader) error {
	for _, n := range m.nodes {
		params := n.layer.Params()
		if len(params) == 0 {
			continue
		}
		if err := binary.Read(r, binary.NativeEndian, params); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return errors.Wrapf(err, "load %q: layer %q", m.name, n.layer.Name())
		}
	}

	var extra [1]byte
	if n, _ := io.ReadFull(r, extra[:]); n > 0 {
		klog.Warningf("load %q: ignoring trailing bytes after %d parameters", m.name, m.ParamCount())
	}
	return nil
}

// SaveFile writes the parameters to path, creating or truncating it.
func (m *Model) SaveFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create parameter file")
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "failed to close parameter file")
		}
	}()

	w := bufio.NewWriter(f)
	if err := m.Save(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush parameter file")
	}
	klog.V(1).Infof("model %q: saved %d parameters to %s", m.name, m.ParamCount(), path)
	return nil
}

// LoadFile reads parameters from path.
func (m *Model) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "failed to open parameter file")
	}
	defer f.Close()

	if err := m.Load(bufio.NewReader(f)); err != nil {
		return err
	}
	klog.V(1).Infof("model %q: loaded %d parameters from %s", m.name, m.ParamCount(), path)
	return nil
}
