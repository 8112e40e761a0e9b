package integration

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-shardchain/gossip"
	"github.com/rony4d/go-shardchain/ledger"
	"github.com/rony4d/go-shardchain/persist"
	"github.com/rony4d/go-shardchain/pow"
	"github.com/rony4d/go-shardchain/rpcapi"
	"github.com/rony4d/go-shardchain/shardnet"
)

// Config is everything a Node needs. Zero addresses disable the
// corresponding server.
type Config struct {
	Name  string
	Rules shardnet.Rules

	DataDir  string
	InMemory bool
	CacheMB  int
	Handles  int

	Ledger           ledger.Config
	SnapshotInterval time.Duration

	Mine        bool
	MineShards  []uint32 // empty means every shard
	MineTimeout time.Duration

	RPCAddr     string
	MetricsAddr string
}

// NodeConfigFromPreset fills the resource knobs of a Config from p.
func NodeConfigFromPreset(name string, rules shardnet.Rules, p PresetConfig) Config {
	lc := ledger.DefaultConfig()
	lc.ReceiptCacheSize = p.ReceiptCache
	return Config{
		Name:             name,
		Rules:            rules,
		InMemory:         p.InMemory,
		CacheMB:          p.CacheMB,
		Handles:          p.Handles,
		Ledger:           lc,
		SnapshotInterval: p.SnapshotInterval,
		MineTimeout:      p.MineTimeout,
	}
}

// Node runs one ledger with its miners, its gossip endpoint, its API and
// its snapshot loop.
type Node struct {
	cfg Config
	log logrus.FieldLogger

	store   *persist.Store
	ledger  *ledger.Ledger
	peer    *gossip.Peer
	workers []*pow.Worker

	rpcAddr     net.Addr
	metricsAddr net.Addr
	servers     []*http.Server

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	start  bool
	stop   bool
}

// NewNode opens the store and restores the ledger from its snapshot, or
// starts from genesis when the store is empty. A snapshot that fails to
// decode or verify is fatal. hub may be nil for a node without peers.
func NewNode(cfg Config, hub *gossip.Hub, log logrus.FieldLogger) (*Node, error) {
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}
	log = log.WithField("node", cfg.Name)

	var (
		db  kvdb.Store
		err error
	)
	if cfg.InMemory || cfg.DataDir == "" {
		db = persist.NewMemoryDB()
	} else {
		db, err = persist.OpenLevelDB(cfg.DataDir, cfg.CacheMB, cfg.Handles)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
	}
	store := persist.New(db, log)

	l, err := openLedger(cfg, store, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	n := &Node{
		cfg:    cfg,
		log:    log,
		store:  store,
		ledger: l,
	}
	if hub != nil {
		n.peer = hub.Join(cfg.Name, l, log)
	}
	return n, nil
}

func openLedger(cfg Config, store *persist.Store, log logrus.FieldLogger) (*ledger.Ledger, error) {
	snap, err := store.Load()
	if errors.Is(err, persist.ErrNotFound) {
		log.WithField("network", cfg.Rules.Name).Info("Starting from genesis")
		return ledger.New(cfg.Rules, cfg.Ledger, log)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	l, err := ledger.Restore(cfg.Rules, cfg.Ledger, snap, log)
	if err != nil {
		return nil, fmt.Errorf("failed to restore snapshot: %w", err)
	}
	_, seq := l.PoH()
	log.WithField("pohseq", seq).Info("Restored ledger from snapshot")
	return l, nil
}

// Ledger returns the node's ledger.
func (n *Node) Ledger() *ledger.Ledger {
	return n.ledger
}

// Store returns the node's snapshot store.
func (n *Node) Store() *persist.Store {
	return n.store
}

// RPCAddr is the bound API address, nil if the API is disabled or the node
// is not started.
func (n *Node) RPCAddr() net.Addr {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rpcAddr
}

// MetricsAddr is the bound metrics address.
func (n *Node) MetricsAddr() net.Addr {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.metricsAddr
}

// Workers returns the running miners.
func (n *Node) Workers() []*pow.Worker {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*pow.Worker(nil), n.workers...)
}

// Start launches the servers, the miners and the snapshot loop.
func (n *Node) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.start {
		return errors.New("node already started")
	}
	n.start = true

	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel

	if n.cfg.RPCAddr != "" {
		h, err := rpcapi.NewHandler(n.ledger, n.log)
		if err != nil {
			return err
		}
		addr, err := n.serve("rpc", n.cfg.RPCAddr, h)
		if err != nil {
			return err
		}
		n.rpcAddr = addr
	}
	if n.cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		addr, err := n.serve("metrics", n.cfg.MetricsAddr, mux)
		if err != nil {
			return err
		}
		n.metricsAddr = addr
	}

	if n.cfg.Mine {
		var announcer pow.Announcer
		if n.peer != nil {
			announcer = n.peer
		}
		wcfg := pow.DefaultWorkerConfig()
		if n.cfg.MineTimeout > 0 {
			wcfg.Timeout = n.cfg.MineTimeout
		}
		for _, id := range n.mineShards() {
			w := pow.NewWorker(id, n.ledger, announcer, wcfg, n.log)
			w.Start(ctx)
			n.workers = append(n.workers, w)
		}
	}

	if n.cfg.SnapshotInterval > 0 {
		n.wg.Add(1)
		go n.snapshotLoop(ctx)
	}

	n.log.WithFields(logrus.Fields{
		"network": n.cfg.Rules.Name,
		"shards":  n.ledger.ShardCount(),
		"miners":  len(n.workers),
	}).Info("Node started")
	return nil
}

func (n *Node) mineShards() []uint32 {
	if len(n.cfg.MineShards) > 0 {
		return n.cfg.MineShards
	}
	ids := make([]uint32, n.ledger.ShardCount())
	for i := range ids {
		ids[i] = uint32(i)
	}
	return ids
}

func (n *Node) serve(name, addr string, h http.Handler) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%s listener: %w", name, err)
	}
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	n.servers = append(n.servers, srv)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			n.log.WithError(err).WithField("server", name).Error("Server failed")
		}
	}()
	n.log.WithField("addr", ln.Addr().String()).Infof("Serving %s", name)
	return ln.Addr(), nil
}

func (n *Node) snapshotLoop(ctx context.Context) {
	defer n.wg.Done()
	ticker := time.NewTicker(n.cfg.SnapshotInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := n.Snapshot(); err != nil {
				n.log.WithError(err).Error("Periodic snapshot failed")
			}
		}
	}
}

// Snapshot writes the current ledger state to the store.
func (n *Node) Snapshot() error {
	return n.store.Save(n.ledger.Snapshot())
}

// Stop halts everything Start launched, writes a final snapshot and closes
// the store. It is safe to call more than once.
func (n *Node) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stop {
		return nil
	}
	n.stop = true

	for _, w := range n.workers {
		w.Stop()
	}
	if n.peer != nil {
		n.peer.Stop()
	}
	if n.cancel != nil {
		n.cancel()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, srv := range n.servers {
		_ = srv.Shutdown(ctx)
	}
	n.wg.Wait()

	err := n.Snapshot()
	if err != nil {
		n.log.WithError(err).Error("Final snapshot failed")
	}
	if cerr := n.store.Close(); err == nil {
		err = cerr
	}
	n.log.Info("Node stopped")
	return err
}
