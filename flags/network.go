package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// NetworkFlags select the network whose rules the node follows.

func NetworkFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "network",
			Usage: "Network to join (main|test|fake)",
			Value: "main",
		},
		cli.BoolFlag{
			Name:  "fakenet",
			Usage: "Shortcut for --network fake --preset dev",
		},
	}
}

// MiningFlags control the proof-of-work workers.

func MiningFlags() []cli.Flag {
	return []cli.Flag{
		cli.BoolFlag{
			Name:  "mine",
			Usage: "Enable mining",
		},
		cli.StringFlag{
			Name:  "mine.shards",
			Usage: "Comma-separated shard ids to mine (default: all)",
		},
		cli.DurationFlag{
			Name:  "mine.timeout",
			Usage: "Budget of one nonce search before the template is rebuilt",
		},
	}
}

// AllFlags is the full flag set of the node command.
func AllFlags() []cli.Flag {
	var all []cli.Flag
	all = append(all, CommonFlags()...)
	all = append(all, NodeFlags()...)
	all = append(all, NetworkFlags()...)
	all = append(all, MiningFlags()...)
	return all
}
