package launcher

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-shardchain/flags"
	"github.com/rony4d/go-shardchain/gossip"
	"github.com/rony4d/go-shardchain/integration"
	"github.com/rony4d/go-shardchain/ledger"
	"github.com/rony4d/go-shardchain/persist"
)

var app = flags.NewApp()

func init() {
	app.Flags = flags.AllFlags()
	app.Action = runNode
	app.Commands = []cli.Command{
		{
			Name:      "verify",
			Usage:     "Verify the stored snapshot without starting the node",
			ArgsUsage: " ",
			Flags:     flags.AllFlags(),
			Action:    verifySnapshot,
		},
	}
}

// Launch parses args and runs the selected command until it returns.
func Launch(args []string) error {
	return app.Run(args)
}

func runNode(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Node.Logging)
	if err != nil {
		return err
	}
	nodeCfg, err := cfg.NodeConfig()
	if err != nil {
		return err
	}

	node, err := integration.NewNode(nodeCfg, gossip.NewHub(), log)
	if err != nil {
		return err
	}
	if err := node.Start(); err != nil {
		_ = node.Stop()
		return err
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)
	sig := <-sigc
	log.WithField("signal", sig.String()).Info("Got interrupt, shutting down")

	return node.Stop()
}

// verifySnapshot loads the snapshot from the datadir and runs the same
// checks as a node restart: chain integrity, state replay, PoH order.
func verifySnapshot(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Node.Logging)
	if err != nil {
		return err
	}
	nodeCfg, err := cfg.NodeConfig()
	if err != nil {
		return err
	}
	if nodeCfg.InMemory {
		return fmt.Errorf("nothing to verify for an in-memory node")
	}

	db, err := persist.OpenLevelDB(nodeCfg.DataDir, nodeCfg.CacheMB, nodeCfg.Handles)
	if err != nil {
		return err
	}
	store := persist.New(db, log)
	defer store.Close()

	info, err := store.Info()
	if err != nil {
		return err
	}
	snap, err := store.Load()
	if err != nil {
		return err
	}
	l, err := ledger.Restore(nodeCfg.Rules, nodeCfg.Ledger, snap, log)
	if err != nil {
		return err
	}

	w := ctx.App.Writer
	fmt.Fprintf(w, "network %d, saved at %s, %d bytes\n", info.NetworkID, info.SavedAt.Time().UTC().Format(time.RFC3339), info.Size)
	for id := uint32(0); id < l.ShardCount(); id++ {
		tip, err := l.Tip(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "shard %d: height %d, tip %s\n", id, tip.Height, tip.Hash.Hex())
	}
	value, seq := l.PoH()
	fmt.Fprintf(w, "poh: seq %d, value %s\n", seq, value.Hex())
	return nil
}
