// Command volmesh rasterizes analytic shapes into volume grids and converts
// them into polygon meshes.
//
//	volmesh mesh --shape torus --size 2 --voxel 0.05 --adaptivity 0.1 --out torus.stl --preview torus.png
//	volmesh stat torus.stl
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/volmesh"
	"github.com/soypat/volmesh/render"
	"github.com/spf13/cobra"
)

func main() {
	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	if err := newRootCmd(log).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(log *logrus.Logger) *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "volmesh",
		Short:        "Convert volume grids to polygon meshes",
		SilenceUsage: true,
	}
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug messages")
	root.AddCommand(newMeshCmd(log), newStatCmd(log))
	return root
}

func newMeshCmd(log *logrus.Logger) *cobra.Command {
	cfg := DefaultConfig()
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "mesh",
		Short: "Rasterize a shape and write its isosurface mesh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgPath != "" {
				if err := loadConfig(cmd.Flags(), cfgPath, &cfg); err != nil {
					return err
				}
			}
			return runMesh(log, cfg)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&cfgPath, "config", "", "TOML configuration file, flags take precedence")
	fs.StringVar(&cfg.Shape, "shape", cfg.Shape, "shape to mesh: "+strings.Join(shapeNames(), ", "))
	fs.Float64Var(&cfg.Size, "size", cfg.Size, "characteristic shape length")
	fs.Float64Var(&cfg.Voxel, "voxel", cfg.Voxel, "voxel size of the rasterized grid")
	fs.Float64Var(&cfg.HalfWidth, "half-width", cfg.HalfWidth, "narrow band half width in voxels")
	fs.StringVar(&cfg.ResolutionMode, "resolution-mode", cfg.ResolutionMode, "resampling mode: grid, size or amount")
	fs.Float64Var(&cfg.VoxelSize, "voxel-size", cfg.VoxelSize, "voxel size used by resolution mode size")
	fs.Float64Var(&cfg.VoxelAmount, "voxel-amount", cfg.VoxelAmount, "voxels along the longest extent used by resolution mode amount")
	fs.Float64Var(&cfg.Threshold, "threshold", cfg.Threshold, "isovalue of the extracted surface")
	fs.Float64Var(&cfg.Adaptivity, "adaptivity", cfg.Adaptivity, "surface simplification in [0,1]")
	fs.StringVarP(&cfg.Out, "out", "o", cfg.Out, "output mesh file (.stl or .obj)")
	fs.StringVar(&cfg.Preview, "preview", cfg.Preview, "optional PNG preview file")
	return cmd
}

func runMesh(log logrus.FieldLogger, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	res, _ := cfg.Resolution()
	g, err := cfg.Grid()
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"shape":  cfg.Shape,
		"voxels": g.ActiveVoxelCount(),
		"leaves": g.LeafCount(),
		"dim":    g.ActiveBounds().Dim(),
		"res":    res.String(),
	}).Debug("rasterized grid")

	conv := volmesh.Converter{Log: log}
	d, ok := conv.VolumeToMeshData(g, res, cfg.Threshold, cfg.Adaptivity)
	if !ok {
		return fmt.Errorf("grid %q of type %s holds no scalar values", g.Name(), g.ValueType())
	}
	if d.Err != nil {
		return d.Err
	}
	if d.IsEmpty() {
		return fmt.Errorf("threshold %g does not cross the %s surface", cfg.Threshold, cfg.Shape)
	}
	m := conv.BuildMesh(d.Surface)

	if strings.EqualFold(filepath.Ext(cfg.Out), ".obj") {
		err = writeFile(cfg.Out, func(w io.Writer) error { return render.WriteOBJ(w, m) })
	} else {
		err = render.CreateSTL(cfg.Out, m)
	}
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"verts":  m.NumVerts(),
		"faces":  m.NumFaces(),
		"volume": m.Volume(),
	}).Infof("wrote %s", cfg.Out)

	if cfg.Preview != "" {
		if err := render.CreatePNG(cfg.Preview, m, render.DefaultView()); err != nil {
			return fmt.Errorf("rendering preview: %w", err)
		}
		log.Infof("wrote %s", cfg.Preview)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	err = write(fp)
	if cerr := fp.Close(); err == nil {
		err = cerr
	}
	return err
}

func newStatCmd(log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "stat FILE.stl",
		Short: "Print triangle count and bounds of a binary STL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer fp.Close()
			tris, err := render.ReadSTL(fp)
			if err != nil {
				return err
			}
			lo, hi := tris[0][0], tris[0][0]
			for _, t := range tris {
				for _, v := range t {
					lo = ms3.MinElem(lo, v)
					hi = ms3.MaxElem(hi, v)
				}
			}
			log.WithFields(logrus.Fields{
				"triangles": len(tris),
				"min":       lo,
				"max":       hi,
			}).Info(args[0])
			return nil
		},
	}
}
