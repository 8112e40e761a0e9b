package gossip

import (
	"errors"
	"sync"
	"time"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-shardchain/inter"
	"github.com/rony4d/go-shardchain/ledger"
)

const (
	// InboxSize bounds the frames queued for one peer.
	InboxSize = 1024
	// MaxBlocksPerReply caps the blocks sent for one MsgGetBlocks.
	MaxBlocksPerReply = 256

	resyncInterval = 2 * time.Second
)

// Backend is the ledger as seen by gossip.
type Backend interface {
	OnBlockReceived(shardID uint32, b *inter.Block) error
	Tip(shardID uint32) (*inter.Block, error)
	Blocks(shardID uint32) ([]*inter.Block, error)
}

type envelope struct {
	from string
	raw  []byte
}

type syncRequest struct {
	from idx.Block
	at   time.Time
}

// Peer is one node's endpoint on a Hub.
type Peer struct {
	id      string
	hub     *Hub
	backend Backend
	log     logrus.FieldLogger

	inbox chan envelope
	quit  chan struct{}
	wg    sync.WaitGroup
	start sync.Once
	stop  sync.Once

	syncMu  sync.Mutex
	syncing map[uint32]syncRequest
}

func newPeer(id string, hub *Hub, backend Backend, log logrus.FieldLogger) *Peer {
	return &Peer{
		id:      id,
		hub:     hub,
		backend: backend,
		log:     log.WithField("peer", id),
		inbox:   make(chan envelope, InboxSize),
		quit:    make(chan struct{}),
		syncing: make(map[uint32]syncRequest),
	}
}

func (p *Peer) ID() string {
	return p.id
}

// Start launches the inbox loop.
func (p *Peer) Start() {
	p.start.Do(func() {
		p.wg.Add(1)
		go p.loop()
	})
}

// Stop leaves the hub and waits for the inbox loop to exit.
func (p *Peer) Stop() {
	p.stop.Do(func() {
		p.hub.leave(p.id)
		close(p.quit)
	})
	p.wg.Wait()
}

// Announce sends b to every other peer on the hub.
func (p *Peer) Announce(b *inter.Block) {
	raw, err := EncodeNewBlock(b.ShardID, b)
	if err != nil {
		p.log.WithError(err).Error("Cannot encode block")
		return
	}
	p.hub.broadcast(p.id, raw)
}

// Deliver queues a frame from another peer. It never blocks; a full inbox
// drops the frame.
func (p *Peer) Deliver(from string, raw []byte) bool {
	select {
	case p.inbox <- envelope{from: from, raw: raw}:
		return true
	default:
		framesDropped.WithLabelValues("inbox").Inc()
		return false
	}
}

func (p *Peer) loop() {
	defer p.wg.Done()
	for {
		select {
		case env := <-p.inbox:
			p.handle(env)
		case <-p.quit:
			return
		}
	}
}

func (p *Peer) handle(env envelope) {
	f, err := DecodeFrame(env.raw)
	if err != nil {
		framesDropped.WithLabelValues("frame").Inc()
		p.log.WithField("from", env.from).WithError(err).Warn("Rejected frame")
		return
	}

	switch f.Type {
	case MsgNewBlock:
		framesReceived.WithLabelValues("new_block").Inc()
		msg, err := DecodeNewBlock(f.Payload)
		if err != nil {
			framesDropped.WithLabelValues("decode").Inc()
			p.log.WithField("from", env.from).WithError(err).Warn("Rejected block frame")
			return
		}
		p.onNewBlock(env.from, msg)
	case MsgGetBlocks:
		framesReceived.WithLabelValues("get_blocks").Inc()
		msg, err := DecodeGetBlocks(f.Payload)
		if err != nil {
			framesDropped.WithLabelValues("decode").Inc()
			return
		}
		p.onGetBlocks(env.from, msg)
	default:
		framesDropped.WithLabelValues("type").Inc()
		p.log.WithFields(logrus.Fields{"from": env.from, "type": f.Type}).WithError(ErrUnknownMessage).Warn("Rejected frame")
	}
}

func (p *Peer) onNewBlock(from string, msg NewBlockMsg) {
	err := p.backend.OnBlockReceived(msg.ShardID, msg.Block)
	if !errors.Is(err, ledger.ErrLinkage) {
		return
	}
	// a block from ahead of our tip means we missed some; ask the sender
	tip, err := p.backend.Tip(msg.ShardID)
	if err != nil || msg.Block.Height <= tip.Height+1 {
		return
	}
	p.requestBlocks(from, GetBlocksMsg{ShardID: msg.ShardID, From: tip.Height + 1})
}

func (p *Peer) requestBlocks(to string, req GetBlocksMsg) {
	p.syncMu.Lock()
	last, ok := p.syncing[req.ShardID]
	if ok && last.from == req.From && time.Since(last.at) < resyncInterval {
		p.syncMu.Unlock()
		return
	}
	p.syncing[req.ShardID] = syncRequest{from: req.From, at: time.Now()}
	p.syncMu.Unlock()

	p.log.WithFields(logrus.Fields{"to": to, "shard": req.ShardID, "from": req.From}).Debug("Requesting missing blocks")
	p.hub.send(p.id, to, EncodeGetBlocks(req))
}

func (p *Peer) onGetBlocks(from string, req GetBlocksMsg) {
	blocks, err := p.backend.Blocks(req.ShardID)
	if err != nil {
		return
	}
	sent := 0
	for _, b := range blocks {
		if b.Height < req.From || b.Height == 0 {
			continue
		}
		raw, err := EncodeNewBlock(req.ShardID, b)
		if err != nil {
			p.log.WithError(err).Error("Cannot encode block")
			return
		}
		if !p.hub.send(p.id, from, raw) {
			return
		}
		if sent++; sent == MaxBlocksPerReply {
			return
		}
	}
}
