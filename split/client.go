package split

import (
	"time"

	"github.com/pkg/errors"
	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/he/hefloat"
	"gonum.org/v1/gonum/mat"

	"github.com/tormozz48/simlpe-neural-network/nn"
	"github.com/tormozz48/simlpe-neural-network/utils"
)

// Client classifies images by sending them encrypted to a Server and
// finishing the forward pass locally.
type Client struct {
	ctx   *Context
	proto *Protocol
	next  int

	Stats *utils.TimingStats
}

// NewClient wraps a connected protocol.
func NewClient(ctx *Context, proto *Protocol) *Client {
	return &Client{ctx: ctx, proto: proto, Stats: &utils.TimingStats{}}
}

// Classify returns the class network assigns to input, with the first
// transition evaluated by the server.
func (c *Client) Classify(network *nn.Network, input mat.Matrix) (int, error) {
	size := network.Config().InputSize
	rows, cols := input.Dims()
	if rows != size || cols != size {
		return 0, errors.Errorf("invalid input size %dx%d, want %dx%d", rows, cols, size, size)
	}

	start := time.Now()
	ct, err := c.ctx.Encrypt(flatten(input))
	if err != nil {
		return 0, err
	}
	data, err := ct.MarshalBinary()
	if err != nil {
		return 0, errors.Wrap(err, "encoding ciphertext")
	}
	c.Stats.EncryptionTime += time.Since(start)

	start = time.Now()
	id := c.next
	c.next++
	if err := c.proto.SendForward(id, data, ct.Level(), ct.Scale.Float64()); err != nil {
		return 0, errors.Wrap(err, "sending input")
	}
	resp, err := c.proto.ReceiveForward()
	if err != nil {
		return 0, errors.Wrap(err, "receiving sums")
	}
	c.Stats.ServerTime += time.Since(start)
	if resp.RequestID != id {
		return 0, errors.Errorf("response for request %d, want %d", resp.RequestID, id)
	}

	start = time.Now()
	cts := make([]*rlwe.Ciphertext, len(resp.Ciphertexts))
	for i, b := range resp.Ciphertexts {
		cts[i] = hefloat.NewCiphertext(c.ctx.Params, 1, resp.Level)
		if err := cts[i].UnmarshalBinary(b); err != nil {
			return 0, errors.Wrapf(err, "decoding sum %d", i)
		}
	}
	sums, err := c.ctx.DecryptFirst(cts)
	if err != nil {
		return 0, err
	}
	c.Stats.DecryptionTime += time.Since(start)

	if want, _ := network.Weights(0).Dims(); len(sums) != want {
		return 0, errors.Errorf("server returned %d sums, want %d", len(sums), want)
	}
	return network.ApplyFrom(sums), nil
}

// Close tells the server no more requests follow.
func (c *Client) Close() error {
	return c.proto.SendDone()
}

func flatten(m mat.Matrix) []float64 {
	rows, cols := m.Dims()
	v := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v = append(v, m.At(i, j))
		}
	}
	return v
}
