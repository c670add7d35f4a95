// Command rhiinfo lists GPU adapters, opens a device and optionally runs a
// buffer round-trip smoke test or translates a WGSL shader.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend/native"
	"github.com/gogpu/rhi/internal/shader"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "YAML config file")
		api        = flag.String("api", "", "native API: auto, dx12, vulkan, metal, gl or noop")
		adapter    = flag.Int("adapter", -2, "adapter index, -1 for automatic")
		verbose    = flag.Bool("v", false, "debug logging")
		smoke      = flag.Bool("smoke", false, "run a buffer round-trip on the device")
		iterations = flag.Int("n", 16, "smoke test iterations")
		shaderPath = flag.String("shader", "", "WGSL file to translate instead of opening a device")
		target     = flag.String("target", "hlsl", "shader target: hlsl, msl, glsl or spirv")
		entry      = flag.String("entry", "", "shader entry point")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	rhi.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *shaderPath != "" {
		return translate(*shaderPath, *target, *entry)
	}

	cfg := rhi.DefaultConfig()
	if *configPath != "" {
		loaded, err := rhi.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if *api != "" {
		cfg.API = *api
	}
	if *adapter >= -1 {
		cfg.AdapterIndex = *adapter
	}

	engine, err := native.NewEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	fmt.Printf("api: %s\n", engine.API())
	for _, a := range engine.Adapters() {
		fmt.Printf("  [%d] %s (%s)\n", a.Index, a.Name, a.Type)
	}

	dev, err := engine.OpenDevice()
	if err != nil {
		return err
	}
	defer dev.Destroy()

	l := dev.Limits()
	fmt.Printf("device: %s on %s\n", dev.Label(), dev.Backend())
	fmt.Printf("  max buffer size:      %d\n", l.MaxBufferSize)
	fmt.Printf("  max image dimension:  %d\n", l.MaxImageDimension2D)
	fmt.Printf("  max bind groups:      %d\n", l.MaxBindGroups)
	fmt.Printf("  max workgroup size:   %dx%dx%d\n",
		l.MaxComputeWorkgroupSizeX, l.MaxComputeWorkgroupSizeY, l.MaxComputeWorkgroupSizeZ)

	if !*smoke {
		return nil
	}
	return roundTrip(dev, *iterations, cfg.FenceTimeout)
}

// roundTrip writes a pattern into a device buffer and reads it back n times.
func roundTrip(dev rhi.Device, n int, timeout time.Duration) error {
	const size = 4096
	want := make([]byte, size)
	for i := range want {
		want[i] = byte(i * 7)
	}

	buf, err := dev.CreateBuffer(&rhi.BufferDesc{
		Label: "smoke",
		Size:  size,
		Usage: rhi.BufferUsageStorage | rhi.BufferUsageCopySrc | rhi.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	defer buf.Destroy()

	got := make([]byte, size)
	pb := progressbar.Default(int64(n), "round-trip")
	defer pb.Close()

	start := time.Now()
	for i := range n {
		want[0] = byte(i)
		if err := buf.Write(0, want); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		err := buf.Read(ctx, 0, got)
		cancel()
		if err != nil {
			return fmt.Errorf("iteration %d: %w (status %s)", i, err, rhi.StatusOf(err))
		}
		if !bytes.Equal(got, want) {
			return fmt.Errorf("iteration %d: readback mismatch", i)
		}
		_ = pb.Add(1)
	}
	slog.Info("smoke test passed", "iterations", n, "elapsed", time.Since(start))
	return nil
}

func translate(path, target, entry string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch target {
	case "hlsl":
		out, err := shader.TranslateHLSL(string(src), entry)
		if err != nil {
			return err
		}
		fmt.Printf("// shader model %s, entry %s\n", out.ShaderModel, out.Entry)
		for name, reg := range out.Registers {
			fmt.Printf("// %s: %s\n", name, reg)
		}
		fmt.Print(out.Source)
	case "msl":
		out, err := shader.TranslateMSL(string(src))
		if err != nil {
			return err
		}
		fmt.Print(out)
	case "glsl":
		out, err := shader.TranslateGLSL(string(src), entry)
		if err != nil {
			return err
		}
		fmt.Print(out)
	case "spirv":
		words, err := shader.CompileWGSL(string(src))
		if err != nil {
			return err
		}
		fmt.Printf("%d words\n", len(words))
	default:
		return fmt.Errorf("unknown target %q", target)
	}
	return nil
}
