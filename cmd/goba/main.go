// Command goba runs the core against a BIOS image and a ROM file, either
// indefinitely or for a bounded number of completed frames, optionally
// snapshotting the final framebuffer to a PNG for scripted use.
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"GoBA/internal/bus"
	"GoBA/internal/cartridge"
	"GoBA/internal/cpu"
	"GoBA/internal/memory"
	"GoBA/internal/ppu"
	"GoBA/internal/scheduler"
	"GoBA/rom"
	"GoBA/util/logger"
)

func main() {
	app := cli.NewApp()
	app.Name = "goba"
	app.Usage = "goba [options] <bios-path> <rom-path>"
	app.Description = "a GBA core execution engine"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "frames",
			Usage: "stop after N completed frames (0 = run until the host stops it)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "snapshot",
			Usage: "write the final framebuffer as a PNG to this path",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "raise the logger's verbosity",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowAppHelp(c)
		code := 1
		if c.NArg() == 1 {
			code = 2 // BIOS path given, ROM path missing
		}
		return cli.NewExitError("bios-path and rom-path are both required", code)
	}

	biosPath := c.Args().Get(0)
	romPath := c.Args().Get(1)
	log := logger.New(c.Bool("debug"))

	biosData, err := os.ReadFile(biosPath)
	if err != nil {
		log.Errorf("failed to read BIOS file %q: %v", biosPath, err)
		return cli.NewExitError(err.Error(), 1)
	}
	bios, err := memory.LoadBIOS(biosData)
	if err != nil {
		log.Errorf("bios rejected: %v", err)
		return cli.NewExitError(err.Error(), 1)
	}

	cartImage, err := rom.Load(romPath)
	if err != nil {
		log.Errorf("failed to read ROM file %q: %v", romPath, err)
		return cli.NewExitError(err.Error(), 2)
	}

	cart := cartridge.New(cartImage.Data)
	b := bus.New(bios, memory.NewEWRAM(), memory.NewIWRAM(), cart)
	core := cpu.NewCPU(b)
	core.Reset()
	sched := scheduler.New(b, core)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		log.Info("received stop signal, finishing current iteration")
		cancel()
	}()

	var lastFrame []uint16
	onFrame := func(frame []uint16) {
		lastFrame = frame
		log.Debug("frame ready")
	}

	if err := sched.Run(ctx, c.Int("frames"), onFrame); err != nil {
		log.Errorf("scheduler stopped on error: %v", err)
		return cli.NewExitError(err.Error(), 3)
	}

	if snapshotPath := c.String("snapshot"); snapshotPath != "" && lastFrame != nil {
		if err := saveSnapshot(lastFrame, snapshotPath); err != nil {
			log.Errorf("failed to write snapshot: %v", err)
			return cli.NewExitError(err.Error(), 3)
		}
		log.Infof("wrote snapshot to %s", snapshotPath)
	}

	return nil
}

func saveSnapshot(frame []uint16, path string) error {
	img := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight))
	for y := 0; y < ppu.ScreenHeight; y++ {
		for x := 0; x < ppu.ScreenWidth; x++ {
			c := frame[y*ppu.ScreenWidth+x]
			r := uint8(((c >> 10) & 0x1F) * 8)
			g := uint8(((c >> 5) & 0x1F) * 8)
			bl := uint8((c & 0x1F) * 8)
			img.Set(x, y, color.RGBA{R: r, G: g, B: bl, A: 255})
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	defer file.Close()

	return png.Encode(file, img)
}
