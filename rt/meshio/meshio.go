// Package meshio implements the optional gzipped mesh cache spec §6
// mentions: a round-trip Save/Load for an iso.Mesh, so a driver can skip
// re-running dual contouring on a scene it already extracted once.
// Grounded on _examples/Gekko3D-gekko's own binary-chunk save format for
// voxel brickmaps (length-prefixed fixed-width records under a gzip
// stream) adapted here to an indexed triangle mesh.
package meshio

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/bsegovia/miniq-rt/rt/csg"
	"github.com/bsegovia/miniq-rt/rt/iso"
	"github.com/bsegovia/miniq-rt/rt/mathx"
)

// magic tags the stream so Load can reject a file that isn't one of ours
// before decoding further, rather than misreading garbage as a huge
// vertex count.
const magic uint32 = 0x6d697173 // "miqs"
const version uint32 = 1

// Save gzip-compresses mesh into w as a sequence of fixed-width little
// endian records: a header, then each vertex's position followed by its
// normal, then the index buffer, then the segments.
func Save(w io.Writer, mesh *iso.Mesh) error {
	gz, err := gzip.NewWriterLevel(w, gzip.BestSpeed)
	if err != nil {
		return fmt.Errorf("meshio: open gzip writer: %w", err)
	}
	bw := bufio.NewWriter(gz)

	if err := binary.Write(bw, binary.LittleEndian, magic); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, version); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(mesh.Pos))); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(mesh.Index))); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(mesh.Segments))); err != nil {
		return err
	}
	for i, p := range mesh.Pos {
		if err := writeVec3(bw, p); err != nil {
			return err
		}
		if err := writeVec3(bw, mesh.Nor[i]); err != nil {
			return err
		}
	}
	for _, idx := range mesh.Index {
		if err := binary.Write(bw, binary.LittleEndian, idx); err != nil {
			return err
		}
	}
	for _, seg := range mesh.Segments {
		fields := []int32{
			int32(seg.FirstIndex), int32(seg.FirstVertex),
			int32(seg.IndexCount), int32(seg.VertexCount), int32(seg.Material),
		}
		for _, f := range fields {
			if err := binary.Write(bw, binary.LittleEndian, f); err != nil {
				return err
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("meshio: flush: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("meshio: close gzip writer: %w", err)
	}
	return nil
}

func writeVec3(w io.Writer, v mathx.Vec3f) error {
	for _, f := range [3]float32{v.X, v.Y, v.Z} {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}

func readVec3(r io.Reader) (mathx.Vec3f, error) {
	var f [3]float32
	for i := range f {
		if err := binary.Read(r, binary.LittleEndian, &f[i]); err != nil {
			return mathx.Vec3f{}, err
		}
	}
	return mathx.Vec3f{X: f[0], Y: f[1], Z: f[2]}, nil
}

// Load decodes a mesh written by Save. Any failure — bad magic, truncated
// stream, gzip corruption — is returned as a plain error; callers
// implement spec §7's TransientIO recovery policy themselves by falling
// back to iso.Extract on a non-nil error (see LoadOrBuild).
func Load(r io.Reader) (*iso.Mesh, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("meshio: open gzip reader: %w", err)
	}
	defer gz.Close()
	br := bufio.NewReader(gz)

	var gotMagic, gotVersion, vertCount, indexCount, segCount uint32
	if err := binary.Read(br, binary.LittleEndian, &gotMagic); err != nil {
		return nil, fmt.Errorf("meshio: read magic: %w", err)
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("meshio: bad magic %#x", gotMagic)
	}
	if err := binary.Read(br, binary.LittleEndian, &gotVersion); err != nil {
		return nil, fmt.Errorf("meshio: read version: %w", err)
	}
	if gotVersion != version {
		return nil, fmt.Errorf("meshio: unsupported version %d", gotVersion)
	}
	if err := binary.Read(br, binary.LittleEndian, &vertCount); err != nil {
		return nil, err
	}
	if err := binary.Read(br, binary.LittleEndian, &indexCount); err != nil {
		return nil, err
	}
	if err := binary.Read(br, binary.LittleEndian, &segCount); err != nil {
		return nil, err
	}

	mesh := &iso.Mesh{
		Pos:      make([]mathx.Vec3f, vertCount),
		Nor:      make([]mathx.Vec3f, vertCount),
		Index:    make([]uint32, indexCount),
		Segments: make([]iso.Segment, segCount),
	}
	for i := range mesh.Pos {
		p, err := readVec3(br)
		if err != nil {
			return nil, fmt.Errorf("meshio: read vertex %d: %w", i, err)
		}
		n, err := readVec3(br)
		if err != nil {
			return nil, fmt.Errorf("meshio: read normal %d: %w", i, err)
		}
		mesh.Pos[i], mesh.Nor[i] = p, n
	}
	for i := range mesh.Index {
		if err := binary.Read(br, binary.LittleEndian, &mesh.Index[i]); err != nil {
			return nil, fmt.Errorf("meshio: read index %d: %w", i, err)
		}
	}
	for i := range mesh.Segments {
		var fields [5]int32
		for j := range fields {
			if err := binary.Read(br, binary.LittleEndian, &fields[j]); err != nil {
				return nil, fmt.Errorf("meshio: read segment %d: %w", i, err)
			}
		}
		mesh.Segments[i] = iso.Segment{
			FirstIndex:  int(fields[0]),
			FirstVertex: int(fields[1]),
			IndexCount:  int(fields[2]),
			VertexCount: int(fields[3]),
			Material:    csg.Material(fields[4]),
		}
	}
	return mesh, nil
}

// LoadOrBuild implements spec §7's TransientIO policy for the mesh cache:
// a missing or corrupt cache file is never fatal, it just means paying
// the cost of rebuilding the mesh from the CSG tree and, if path is
// writable, re-populating the cache for next time.
func LoadOrBuild(path string, root *csg.Node, org mathx.Vec3f, levels int, cellSize float32) *iso.Mesh {
	if f, err := os.Open(path); err == nil {
		mesh, loadErr := Load(f)
		f.Close()
		if loadErr == nil {
			return mesh
		}
	}
	mesh := iso.Extract(root, org, levels, cellSize)
	if f, err := os.Create(path); err == nil {
		_ = Save(f, mesh)
		f.Close()
	}
	return mesh
}
