// Command volumecore-pipeline runs a fixed sequence of core filters over
// one input volume, driven by a TOML configuration file, in the style of
// the teacher's flag-parsed cmd/ entry points (see cmd/pingdvid/main.go)
// combined with its TOML-configured server (server/config.go). Stages
// that need a caller-supplied seed list -- watershed and the diffusion
// flooder -- are library calls, not pipeline stages here, since a seed
// list is not naturally expressed as static TOML.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gandhilab/volumecore/dvid"
	"github.com/gandhilab/volumecore/filters"
	"github.com/gandhilab/volumecore/raster"
	"github.com/gandhilab/volumecore/rollingball"
	"github.com/gandhilab/volumecore/storage"
	"github.com/gandhilab/volumecore/stitch"
)

var (
	configPath = flag.String("config", "", "path to the pipeline TOML configuration")
	showHelp   = flag.Bool("help", false, "show this message")
)

const helpMessage = `
volumecore-pipeline runs a sequence of core image-processing stages over
a single raster volume, described by a TOML configuration file.

Usage: volumecore-pipeline -config pipeline.toml
`

var usage = func() {
	fmt.Print(helpMessage)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if *showHelp || *configPath == "" {
		flag.Usage()
		os.Exit(0)
	}

	if err := run(*configPath); err != nil {
		dvid.Errorf("volumecore-pipeline: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Logging.Logfile != "" {
		cfg.Logging.SetLogger()
		defer dvid.Shutdown()
	}

	inType, err := raster.ParseElemType(cfg.Input.ElementType)
	if err != nil {
		return fmt.Errorf("input element_type: %w", err)
	}
	inDesc := raster.Descriptor{Filename: cfg.Input.Filename, Shape: cfg.Input.Shape, ElemType: inType}
	current, err := raster.Open(inDesc, raster.ReadOnly)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer current.Close()

	scratch, err := storage.NewScratch("")
	if err != nil {
		return err
	}
	defer scratch.Close()

	for i, stage := range cfg.Stage {
		dvid.Infof("stage %d: %s\n", i, stage.Op)
		next, err := runStage(current, stage, scratch)
		if err != nil {
			return fmt.Errorf("stage %d (%s): %w", i, stage.Op, err)
		}
		current = next
	}

	return writeOutput(current, cfg.Output)
}

func runStage(in *raster.Volume, stage stageConfig, scratch *storage.Scratch) (*raster.Volume, error) {
	desc := in.Descriptor()

	switch stage.Op {
	case "rollingball":
		out, err := scratch.Alloc(desc.Shape, desc.ElemType)
		if err != nil {
			return nil, err
		}
		err = rollingball.Subtract(in, out, rollingball.Options{Radius: stage.Radius, PreBlur: stage.PreBlur})
		return out, err

	case "threshold":
		out, err := scratch.Alloc(desc.Shape, desc.ElemType)
		if err != nil {
			return nil, err
		}
		err = filters.Threshold(in, out, stage.Value)
		return out, err

	case "sizefilter":
		out, err := scratch.Alloc(desc.Shape, desc.ElemType)
		if err != nil {
			return nil, err
		}
		total, kept, err := filters.SizeFilter(in, out, stage.Min, stage.Max)
		if err != nil {
			return nil, err
		}
		dvid.Infof("sizefilter: %d labels observed, %d kept\n", total, len(kept))
		return out, nil

	case "stitch":
		out, err := scratch.Alloc(desc.Shape, raster.I32)
		if err != nil {
			return nil, err
		}
		last, err := stitch.Run(in, out)
		if err != nil {
			return nil, err
		}
		dvid.Infof("stitch: last label %d\n", last)
		return out, nil

	default:
		return nil, fmt.Errorf("unknown stage op %q", stage.Op)
	}
}

func writeOutput(v *raster.Volume, out volumeConfig) error {
	desc := v.Descriptor()
	outType := desc.ElemType
	if out.ElementType != "" {
		t, err := raster.ParseElemType(out.ElementType)
		if err != nil {
			return fmt.Errorf("output element_type: %w", err)
		}
		outType = t
	}

	dst, err := raster.Open(raster.Descriptor{Filename: out.Filename, Shape: desc.Shape, ElemType: outType}, raster.Create)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer dst.Close()

	if outType != desc.ElemType {
		return fmt.Errorf("output element_type %s must match final stage type %s", outType, desc.ElemType)
	}
	copy(dst.Bytes(), v.Bytes())
	return nil
}
