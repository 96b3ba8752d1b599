// Command miniqrt is the renderer driver spec §6 describes: the
// thinnest possible external collaborator around the ray-tracing core —
// load a camera position/view script, render one frame, write a BMP.
// Everything it touches (CSG scene, mesh extraction, BVH build,
// packet/scalar traversal, shading) lives in the rt/ packages; this file
// only wires them together and maps failures to the three exit codes
// spec §6 names.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bsegovia/miniq-rt/rt/bmpio"
	"github.com/bsegovia/miniq-rt/rt/csg"
	"github.com/bsegovia/miniq-rt/rt/mathx"
	"github.com/bsegovia/miniq-rt/rt/meshio"
	"github.com/bsegovia/miniq-rt/rt/rtlog"
	"github.com/bsegovia/miniq-rt/rt/scene"
)

const (
	exitOK       = 0
	exitArgError = 1
	exitIOError  = 2

	renderWidth  = 1920
	renderHeight = 1080

	octreeLevels  = 6
	octreeCell    = 0.75
	meshCachePath = ".miniqrt-mesh-cache"
)

var log = rtlog.New("miniqrt", false)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: miniqrt <script_path> <output_bmp>")
		return exitArgError
	}
	scriptPath, outputPath := args[0], args[1]

	cam, err := loadViewScript(scriptPath)
	if err != nil {
		log.Errorf("loading view script: %v", err)
		return exitArgError
	}

	root := csg.ExampleScene()
	org := mathx.Vec3f{X: -8, Y: -8, Z: -8}
	mesh := meshio.LoadOrBuild(meshCachePath, root, org, octreeLevels, octreeCell)

	sc := &scene.Scene{
		Root:   root,
		Mesh:   mesh,
		BVH:    scene.BuildBVH(mesh),
		Camera: cam,
		Light:  scene.DefaultLight(),
		Mats:   scene.DefaultMaterialTable(),
	}

	buf := sc.Render(renderWidth, renderHeight)
	if err := bmpio.WriteFile(outputPath, buf); err != nil {
		log.Errorf("writing %s: %v", outputPath, err)
		return exitIOError
	}
	return exitOK
}

// loadViewScript reads a single-line "x y z yaw_deg pitch_deg" camera
// pose. Anything richer (camera paths, multiple keyframes) is outside
// spec §6's single-frame CLI contract; this is the minimal format that
// contract needs.
func loadViewScript(path string) (*scene.Camera, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			return nil, fmt.Errorf("malformed pose line %q: want 5 fields, got %d", line, len(fields))
		}
		vals := make([]float64, 5)
		for i, fld := range fields {
			v, err := strconv.ParseFloat(fld, 32)
			if err != nil {
				return nil, fmt.Errorf("parsing field %d of %q: %w", i, line, err)
			}
			vals[i] = v
		}
		cam := scene.NewCamera()
		cam.Position = mathx.Vec3f{X: float32(vals[0]), Y: float32(vals[1]), Z: float32(vals[2])}
		cam.Yaw = float32(vals[3]) * degToRad
		cam.Pitch = float32(vals[4]) * degToRad
		return cam, nil
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return nil, fmt.Errorf("%s: no pose line found", path)
}

const degToRad = 3.14159265358979323846 / 180
