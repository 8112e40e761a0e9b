package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// NodeFlags holds knobs specific to the local node instance: identity,
// storage and snapshots.

func NodeFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "identity",
			Usage: "Node name used as its gossip identity and in logs",
		},
		cli.IntFlag{
			Name:  "cache",
			Usage: "Megabytes of memory allocated to the database cache",
		},
		cli.IntFlag{
			Name:  "handles",
			Usage: "Open file handles allowed to the database",
		},
		cli.BoolFlag{
			Name:  "inmemory",
			Usage: "Keep all data in memory, nothing survives a restart",
		},
		cli.DurationFlag{
			Name:  "snapshot.interval",
			Usage: "Period of background ledger snapshots (0 disables them)",
		},
		cli.IntFlag{
			Name:  "receipts.cache",
			Usage: "Number of transaction receipts kept for queries",
		},
	}
}
