// Package iotable implements the on-disk intermediate format of spec.md
// §6: a self-describing, column-oriented binary table with per-column
// compression, geometry stored as well-known-binary. The framing follows
// the teacher's own binary convention (a string type tag, then
// binary.Read/Write of fixed-width fields — see tem/reader.go's
// uhdemReader) rather than a general-purpose serialization library; the
// per-column compression layer reaches for compress/gzip the way
// jinterlante1206-AleutianLocal's CLI does for its own binary payloads.
package iotable

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
)

// magic identifies the format; self-describing per spec.md §6.
const magic = "NHDNETBIN"
const formatVersion int32 = 1

// ColumnType tags a column's on-disk encoding.
type ColumnType byte

const (
	Int64 ColumnType = iota
	Float64
	String
	Bool
	WKB
)

// Column is one column of a Table. Exactly one of the typed slices is
// populated, matching Type.
type Column struct {
	Name    string
	Type    ColumnType
	Int64s  []int64
	Float64s []float64
	Strings []string
	Bools   []bool
	WKBs    [][]byte
}

// Table is a column-oriented, in-memory table ready to be written, or just
// read, via WriteTable/ReadTable. RunID ties the file back to the
// diagnostics log produced by the same pipeline run.
type Table struct {
	RunID   string
	NumRows int
	Columns []Column
}

// WriteTable serializes t to w: magic, version, run id, row count, column
// count, then each column's name/type/gzip-compressed payload in turn.
func WriteTable(w io.Writer, t *Table) error {
	if err := writeString(w, magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, formatVersion); err != nil {
		return err
	}
	if err := writeString(w, t.RunID); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(t.NumRows)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(len(t.Columns))); err != nil {
		return err
	}
	for _, c := range t.Columns {
		if err := writeString(w, c.Name); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, byte(c.Type)); err != nil {
			return err
		}
		payload, err := encodeColumn(c)
		if err != nil {
			return err
		}
		compressed, err := gzipBytes(payload)
		if err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, int64(len(compressed))); err != nil {
			return err
		}
		if _, err := w.Write(compressed); err != nil {
			return err
		}
	}
	return nil
}

// ReadTable deserializes a Table previously written by WriteTable.
func ReadTable(r io.Reader) (*Table, error) {
	gotMagic, err := readString(r)
	if err != nil {
		return nil, err
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("iotable: bad magic %q", gotMagic)
	}
	var version int32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != formatVersion {
		return nil, fmt.Errorf("iotable: unsupported format version %d", version)
	}
	runID, err := readString(r)
	if err != nil {
		return nil, err
	}
	var nrows, ncols int32
	if err := binary.Read(r, binary.LittleEndian, &nrows); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &ncols); err != nil {
		return nil, err
	}

	t := &Table{RunID: runID, NumRows: int(nrows), Columns: make([]Column, ncols)}
	for i := range t.Columns {
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		var typeByte byte
		if err := binary.Read(r, binary.LittleEndian, &typeByte); err != nil {
			return nil, err
		}
		var clen int64
		if err := binary.Read(r, binary.LittleEndian, &clen); err != nil {
			return nil, err
		}
		compressed := make([]byte, clen)
		if _, err := io.ReadFull(r, compressed); err != nil {
			return nil, err
		}
		payload, err := gunzipBytes(compressed)
		if err != nil {
			return nil, err
		}
		col, err := decodeColumn(name, ColumnType(typeByte), payload, int(nrows))
		if err != nil {
			return nil, err
		}
		t.Columns[i] = col
	}
	return t, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func gzipBytes(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(b); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzipBytes(b []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer gr.Close()
	return io.ReadAll(gr)
}

func encodeColumn(c Column) ([]byte, error) {
	var buf bytes.Buffer
	switch c.Type {
	case Int64:
		for _, v := range c.Int64s {
			if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
				return nil, err
			}
		}
	case Float64:
		for _, v := range c.Float64s {
			if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
				return nil, err
			}
		}
	case Bool:
		for _, v := range c.Bools {
			b := byte(0)
			if v {
				b = 1
			}
			buf.WriteByte(b)
		}
	case String:
		for _, v := range c.Strings {
			if err := writeString(&buf, v); err != nil {
				return nil, err
			}
		}
	case WKB:
		for _, v := range c.WKBs {
			if err := binary.Write(&buf, binary.LittleEndian, int32(len(v))); err != nil {
				return nil, err
			}
			if _, err := buf.Write(v); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("iotable: unknown column type %d", c.Type)
	}
	return buf.Bytes(), nil
}

func decodeColumn(name string, typ ColumnType, payload []byte, nrows int) (Column, error) {
	r := bytes.NewReader(payload)
	c := Column{Name: name, Type: typ}
	switch typ {
	case Int64:
		c.Int64s = make([]int64, nrows)
		if err := binary.Read(r, binary.LittleEndian, &c.Int64s); err != nil {
			return c, err
		}
	case Float64:
		c.Float64s = make([]float64, nrows)
		if err := binary.Read(r, binary.LittleEndian, &c.Float64s); err != nil {
			return c, err
		}
	case Bool:
		c.Bools = make([]bool, nrows)
		for i := 0; i < nrows; i++ {
			b, err := r.ReadByte()
			if err != nil {
				return c, err
			}
			c.Bools[i] = b != 0
		}
	case String:
		c.Strings = make([]string, nrows)
		for i := 0; i < nrows; i++ {
			s, err := readString(r)
			if err != nil {
				return c, err
			}
			c.Strings[i] = s
		}
	case WKB:
		c.WKBs = make([][]byte, nrows)
		for i := 0; i < nrows; i++ {
			var n int32
			if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
				return c, err
			}
			b := make([]byte, n)
			if _, err := io.ReadFull(r, b); err != nil {
				return c, err
			}
			c.WKBs[i] = b
		}
	default:
		return c, fmt.Errorf("iotable: unknown column type %d", typ)
	}
	return c, nil
}
