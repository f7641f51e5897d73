package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/urfave/cli.v1/altsrc"

	"github.com/alex-c-239/intrusive-ptr/objcache"
	"github.com/alex-c-239/intrusive-ptr/pool"
)

type payload struct {
	Seq  uint64
	Data [64]byte
}

func benchCmd(c *cli.Context) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	workers := c.Int("workers")
	ops := c.Int("ops")
	poolSize := c.Int("poolsize")
	cacheSize := c.Int("cachesize")

	p, err := pool.NewPool[payload](poolSize, func(v *payload) {
		v.Seq = 0
	})
	if err != nil {
		return err
	}
	cache, err := objcache.New[*pool.Item[payload]](cacheSize)
	if err != nil {
		return err
	}

	logger.Info("starting churn",
		zap.Int("workers", workers),
		zap.Int("ops", ops),
		zap.Int("poolsize", poolSize),
		zap.Int("cachesize", cacheSize),
	)

	var total uint64
	start := time.Now()

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			var seq uint64
			for i := 0; i < ops; i++ {
				h, err := p.Get()
				if err == pool.ErrOutOfObjects {
					continue
				}
				if err != nil {
					return err
				}
				seq++
				h.Get().Value.Seq = seq

				cp := h.Clone()
				mv := cp.Move()

				cache.Put(fmt.Sprintf("%d-%d", w, seq%uint64(cacheSize)), h)

				mv.Release()
				h.Release()
				atomic.AddUint64(&total, 1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("churn failed", zap.Error(err))
		return err
	}

	cache.Purge()
	elapsed := time.Since(start)

	fmt.Println("  Churn results ")
	fmt.Println("=================================")
	fmt.Printf(" Workers    : %d\n", workers)
	fmt.Printf(" Operations : %d\n", total)
	fmt.Printf(" Duration   : %s\n", elapsed)
	fmt.Printf(" Throughput : %.0f ops/s\n", float64(total)/elapsed.Seconds())
	fmt.Printf(" Pool used  : %d\n", p.GetUsed())
	fmt.Printf(" Pool free  : %d\n", p.GetFree())
	fmt.Println("=================================")

	if used := p.GetUsed(); used != 0 {
		logger.Error("references leaked", zap.Int("outstanding", used))
		return fmt.Errorf("%d objects still out of the pool", used)
	}
	logger.Info("churn done", zap.Duration("elapsed", elapsed))

	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "Intrusive RC Tool"
	app.Version = "0.0.1"
	app.Usage = "Stress and measure the intrusive reference counting machinery"

	genericFlags := []cli.Flag{
		altsrc.NewIntFlag(cli.IntFlag{
			Name:  "workers",
			Usage: "Number of concurrent workers",
			Value: 8,
		}),
		altsrc.NewIntFlag(cli.IntFlag{
			Name:  "ops",
			Usage: "Operations per worker",
			Value: 100000,
		}),
		altsrc.NewIntFlag(cli.IntFlag{
			Name:  "poolsize",
			Usage: "Capacity of the object pool",
			Value: 1024,
		}),
		altsrc.NewIntFlag(cli.IntFlag{
			Name:  "cachesize",
			Usage: "Capacity of the object cache",
			Value: 128,
		}),
	}

	app.Commands = []cli.Command{
		{
			Name:    "bench",
			Aliases: []string{"b"},
			Usage:   "Run concurrent clone/release churn over pooled objects",
			Flags:   genericFlags,
			Action:  benchCmd,
		},
	}

	app.Run(os.Args)
}
