package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/mogaika/meshprobe/config"
	"github.com/mogaika/meshprobe/gui"
	"github.com/mogaika/meshprobe/importer"
	"github.com/mogaika/meshprobe/inspect"
	"github.com/mogaika/meshprobe/meshbuf"
	"github.com/mogaika/meshprobe/vfs"
	"github.com/mogaika/meshprobe/web"

	_ "github.com/mogaika/meshprobe/importer/gltf"
	_ "github.com/mogaika/meshprobe/importer/obj"
	_ "github.com/mogaika/meshprobe/importer/stl"
)

func main() {
	var cfgpath, res, iso, models, addr, encoding string
	var count int
	var showgui, dump bool
	flag.StringVar(&cfgpath, "config", "", "Path to yaml config")
	flag.StringVar(&res, "res", "", "Path to folder with bundled models")
	flag.StringVar(&iso, "iso", "", "Path to udf image with bundled models")
	flag.StringVar(&models, "models", "", fmt.Sprintf("Comma separated list of models to inspect (%s)", strings.Join(importer.Extensions(), ", ")))
	flag.IntVar(&count, "count", 0, "Count of packed floats to print per model")
	flag.StringVar(&addr, "i", "", "Address of report server, empty to disable")
	flag.StringVar(&encoding, "encoding", "", "Encoding of binary stl headers")
	flag.BoolVar(&showgui, "gui", false, "Show report in window")
	flag.BoolVar(&dump, "dump", false, "Log layout and decoded vertices")
	flag.Parse()

	cfg := config.Default()
	if cfgpath != "" {
		var err error
		if cfg, err = config.Load(cfgpath); err != nil {
			log.Fatal(err)
		}
	}
	if res != "" {
		cfg.Resources = res
	}
	if iso != "" {
		cfg.Iso = iso
	}
	if models != "" {
		cfg.Models = strings.Split(models, ",")
	}
	if count > 0 {
		cfg.DumpCount = count
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if encoding != "" {
		if err := config.SetEncoding(encoding); err != nil {
			log.Fatalf("%v (available: %s)", err, strings.Join(config.ListEncodings(), ", "))
		}
	}

	var dir vfs.Directory
	if cfg.Iso != "" {
		isoDir, err := vfs.OpenIso(cfg.Iso)
		if err != nil {
			log.Fatal(err)
		}
		defer isoDir.Close()
		dir = isoDir
	} else {
		dd := vfs.NewDirectoryDriver(cfg.Resources)
		log.Printf("[meshprobe] Using resources directory '%s'", dd.Path())
		dir = dd
	}

	ins := &inspect.Inspector{
		Dir:       dir,
		Allocator: meshbuf.NewHeapAllocator(),
		Count:     cfg.DumpCount,
		Dump:      dump,
	}

	reports := &inspect.ReportHolder{}
	report := ins.Run(cfg.Models)
	reports.Set(report)
	fmt.Println(report.Text)

	if cfg.Addr != "" {
		srv := web.NewServer(ins, reports)
		if showgui {
			go func() {
				if err := web.StartServer(cfg.Addr, srv); err != nil {
					log.Fatal(err)
				}
			}()
		} else if err := web.StartServer(cfg.Addr, srv); err != nil {
			log.Fatal(err)
		}
	}

	if showgui {
		gui.ShowReport("meshprobe", report.Text)
	}
}
