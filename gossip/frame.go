// Package gossip carries blocks between nodes.
//
// Every message is a frame: the 4-byte magic "SHRD", a message type byte
// and a payload. Frames with another magic are rejected before anything
// else is decoded.
package gossip

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-shardchain/inter"
)

// Message types.
const (
	MsgNewBlock  byte = 0x01
	MsgGetBlocks byte = 0x02
)

// Magic prefixes every frame.
var Magic = [4]byte{'S', 'H', 'R', 'D'}

var (
	ErrBadMagic       = errors.New("bad frame magic")
	ErrShortFrame     = errors.New("frame too short")
	ErrUnknownMessage = errors.New("unknown message type")
)

const headerSize = len(Magic) + 1

// Frame is a decoded message envelope.
type Frame struct {
	Type    byte
	Payload []byte
}

// EncodeFrame prefixes payload with the magic and the message type.
func EncodeFrame(f Frame) []byte {
	out := make([]byte, 0, headerSize+len(f.Payload))
	out = append(out, Magic[:]...)
	out = append(out, f.Type)
	return append(out, f.Payload...)
}

// DecodeFrame splits raw into its type and payload. The payload aliases raw.
func DecodeFrame(raw []byte) (Frame, error) {
	if len(raw) < len(Magic) {
		return Frame{}, ErrShortFrame
	}
	if !bytes.Equal(raw[:len(Magic)], Magic[:]) {
		return Frame{}, ErrBadMagic
	}
	if len(raw) < headerSize {
		return Frame{}, ErrShortFrame
	}
	return Frame{Type: raw[len(Magic)], Payload: raw[headerSize:]}, nil
}

// NewBlockMsg announces b on shardID.
type NewBlockMsg struct {
	ShardID uint32
	Block   *inter.Block
}

// EncodeNewBlock builds a MsgNewBlock frame.
func EncodeNewBlock(shardID uint32, b *inter.Block) ([]byte, error) {
	raw, err := inter.MarshalBlock(b)
	if err != nil {
		return nil, err
	}
	payload := append(bigendian.Uint32ToBytes(shardID), raw...)
	return EncodeFrame(Frame{Type: MsgNewBlock, Payload: payload}), nil
}

// DecodeNewBlock parses the payload of a MsgNewBlock frame.
func DecodeNewBlock(payload []byte) (NewBlockMsg, error) {
	if len(payload) < 4 {
		return NewBlockMsg{}, ErrShortFrame
	}
	b, err := inter.UnmarshalBlock(payload[4:])
	if err != nil {
		return NewBlockMsg{}, fmt.Errorf("decode block: %w", err)
	}
	return NewBlockMsg{ShardID: bigendian.BytesToUint32(payload[:4]), Block: b}, nil
}

// GetBlocksMsg asks for a shard's blocks from a height on.
type GetBlocksMsg struct {
	ShardID uint32
	From    idx.Block
}

// EncodeGetBlocks builds a MsgGetBlocks frame.
func EncodeGetBlocks(m GetBlocksMsg) []byte {
	payload := append(bigendian.Uint32ToBytes(m.ShardID), bigendian.Uint64ToBytes(uint64(m.From))...)
	return EncodeFrame(Frame{Type: MsgGetBlocks, Payload: payload})
}

// DecodeGetBlocks parses the payload of a MsgGetBlocks frame.
func DecodeGetBlocks(payload []byte) (GetBlocksMsg, error) {
	if len(payload) != 4+8 {
		return GetBlocksMsg{}, ErrShortFrame
	}
	return GetBlocksMsg{
		ShardID: bigendian.BytesToUint32(payload[:4]),
		From:    idx.Block(bigendian.BytesToUint64(payload[4:])),
	}, nil
}
