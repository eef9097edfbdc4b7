// cmd/widget-preview/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"campus-notifier/internal/common/config"
	"campus-notifier/internal/common/logger"
	"campus-notifier/internal/widget"
)

// widget-preview renders the home-screen widgets from cached blobs, read
// either from Redis or from a directory of <key>.json files.
func main() {
	dir := flag.String("dir", "", "read <key>.json files from this directory instead of Redis")
	key := flag.String("key", "", "render a single widget key (default: all)")
	seed := flag.Bool("seed", false, "with -dir, copy the files into Redis before rendering")
	redisAddr := flag.String("redis", "", "redis address (default: redis.address from config)")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	// The preview only needs the redis section; a config that fails service
	// validation is still usable here.
	redisCfg := config.RedisConfig{Address: "localhost:6379"}
	if cfg, err := config.Load(); err == nil {
		redisCfg = cfg.Redis
	} else {
		log.Debug("using default redis settings", map[string]interface{}{"error": err})
	}
	if *redisAddr != "" {
		redisCfg.Address = *redisAddr
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var cache widget.Cache
	var files widget.MapCache
	if *dir != "" {
		var err error
		files, err = readDir(*dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read %s: %v\n", *dir, err)
			os.Exit(1)
		}
		cache = files
	}

	if *dir == "" || *seed {
		rc := widget.NewRedisCache(redisCfg)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Warn("redis unavailable, widgets will render empty", map[string]interface{}{"error": err})
		}
		for k, v := range files {
			if err := rc.Set(ctx, k, v); err != nil {
				fmt.Fprintf(os.Stderr, "seed %s: %v\n", k, err)
				os.Exit(1)
			}
		}
		cache = rc
	}

	r := widget.NewRenderer(cache, log)
	var out interface{}
	if *key != "" {
		v := r.Render(ctx, *key)
		if v == nil {
			fmt.Fprintf(os.Stderr, "unknown widget key %q (known: %v)\n", *key, widget.Keys())
			os.Exit(2)
		}
		out = v
	} else {
		out = r.RenderAll(ctx)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
}

func readDir(dir string) (widget.MapCache, error) {
	files := widget.MapCache{}
	for _, k := range widget.Keys() {
		data, err := os.ReadFile(filepath.Join(dir, k+".json"))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		files[k] = string(data)
	}
	return files, nil
}
