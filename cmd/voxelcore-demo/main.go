// Command voxelcore-demo drives a WorldFacade headlessly: an observer
// walks a straight line through a noise-generated world, streaming chunks
// in and out and periodically saving, with no renderer attached. It
// exists to exercise the full streaming core end to end, wiring and
// ticking every component without the window and graphics stack this
// module doesn't own.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/dantero/voxelcore/internal/config"
	"github.com/dantero/voxelcore/internal/loader"
	"github.com/dantero/voxelcore/internal/logging"
	"github.com/dantero/voxelcore/internal/meshing"
	"github.com/dantero/voxelcore/internal/persistence"
	"github.com/dantero/voxelcore/internal/persistence/storage"
	"github.com/dantero/voxelcore/internal/registry"
	"github.com/dantero/voxelcore/internal/streaming"
	"github.com/dantero/voxelcore/internal/voxel"
	"github.com/dantero/voxelcore/internal/worldfacade"
	"github.com/dantero/voxelcore/internal/worldgen"
)

func main() {
	var (
		worldDir = flag.String("world-dir", "./voxelcore-world", "persistence root directory")
		ticks    = flag.Int("ticks", 600, "number of simulation ticks to run")
		logLevel = flag.String("log-level", "info", "debug, info, warn, or error")
	)
	flag.Parse()

	logger, err := logging.New(logging.Config{Level: *logLevel})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := registry.NewDefault()
	store := voxel.NewChunkStore()
	meshes := voxel.NewMeshStore()
	generator := worldgen.NewNoiseGenerator(1, 1, reg)
	builder := meshing.NewCullingBuilder()

	backend, err := storage.NewFilesystemBackend(*worldDir)
	if err != nil {
		logger.Fatal("open world directory", zap.Error(err))
	}
	codec := persistence.NewRegionCodec(cfg.EnableLz4)
	paths := persistence.NewPaths(*worldDir)
	container := persistence.NewRegionContainer(backend, codec, paths)
	layout := persistence.NewDefaultLayout()

	const zoneID = "overworld"
	if _, ok, err := container.LoadWorldInfo(ctx); err != nil {
		logger.Fatal("load world info", zap.Error(err))
	} else if !ok {
		info := persistence.WorldInfo{DefaultZoneID: zoneID, WorldDisplayName: "Voxelcore Demo World"}
		if err := container.SaveWorldInfo(ctx, info); err != nil {
			logger.Fatal("write world info", zap.Error(err))
		}
	}

	ldr := loader.New(container, layout, generator, store, logger, cfg.Loader(zoneID))
	streamer := streaming.New(store, meshes, reg, generator, builder, ldr, logger, cfg.Streaming())
	facade := worldfacade.New(zoneID, store, meshes, streamer, container, layout, logger, generator.Version(), worldfacade.Options{})
	defer streamer.Shutdown()

	format := container.Format()
	logger.Info("starting headless streaming demo",
		zap.String("worldDir", *worldDir),
		zap.Int("ticks", *ticks),
		zap.String("regionFormat", format.ID),
		zap.Uint32("regionFormatVersion", format.Version),
	)

	if err := facade.LoadAll(ctx); err != nil {
		logger.Fatal("load existing world", zap.Error(err))
	}

	const tickRate = 50 * time.Millisecond
	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	observer := mgl32.Vec3{0, 64, 0}
	const speed = float32(0.5) // blocks per tick along X

	for i := 0; i < *ticks; i++ {
		select {
		case <-ctx.Done():
			logger.Info("interrupted, saving before exit")
			if err := facade.SaveAll(context.Background()); err != nil {
				logger.Error("save on interrupt failed", zap.Error(err))
			}
			return
		case <-ticker.C:
		}

		observer[0] += speed
		facade.UpdateStreaming(ctx, observer)

		if i%200 == 199 {
			pressure := facade.QueuePressure()
			logger.Info("streaming tick",
				zap.Int("tick", i),
				zap.Int("genPending", pressure.GenPending),
				zap.Int("meshPending", pressure.MeshPending),
			)
			if err := facade.SaveAll(ctx); err != nil {
				logger.Error("periodic save failed", zap.Error(err))
			}
		}
	}

	if err := facade.SaveAll(context.Background()); err != nil {
		logger.Error("final save failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("demo complete")
}
