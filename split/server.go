package split

import (
	"io"
	"log"
	"time"

	"github.com/pkg/errors"
	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/he/hefloat"
	"gonum.org/v1/gonum/mat"

	"github.com/tormozz48/simlpe-neural-network/utils"
)

// Server owns the first transition of a network and evaluates it on
// encrypted inputs.
type Server struct {
	kit     *ServerKit
	weights *mat.Dense
	Log     *log.Logger
}

// NewServer copies weights, one row per first hidden neuron.
func NewServer(kit *ServerKit, weights mat.Matrix) (*Server, error) {
	_, cols := weights.Dims()
	if cols > kit.Width {
		return nil, errors.Errorf("weights have %d columns, encrypted width is %d", cols, kit.Width)
	}
	return &Server{
		kit:     kit,
		weights: mat.DenseCopyOf(weights),
		Log:     log.New(io.Discard, "", 0),
	}, nil
}

// WeightedSums returns one ciphertext per weight row whose slot 0 holds the
// dot product of that row with the encrypted input.
func (s *Server) WeightedSums(ct *rlwe.Ciphertext) ([]*rlwe.Ciphertext, error) {
	rows, _ := s.weights.Dims()
	sums := make([]*rlwe.Ciphertext, rows)
	row := make([]float64, s.kit.Params.MaxSlots())

	for i := 0; i < rows; i++ {
		copy(row, s.weights.RawRowView(i))

		pt := hefloat.NewPlaintext(s.kit.Params, ct.Level())
		if err := s.kit.Encoder.Encode(row, pt); err != nil {
			return nil, errors.Wrapf(err, "encoding weight row %d", i)
		}

		product, err := s.kit.Evaluator.MulNew(ct, pt)
		if err != nil {
			return nil, errors.Wrapf(err, "multiplying row %d", i)
		}
		if err := s.kit.Evaluator.Rescale(product, product); err != nil {
			return nil, errors.Wrapf(err, "rescaling row %d", i)
		}

		sum, err := s.innerSum(product)
		if err != nil {
			return nil, errors.Wrapf(err, "summing row %d", i)
		}
		sums[i] = sum
	}
	return sums, nil
}

// innerSum folds the first Width slots into slot 0.
func (s *Server) innerSum(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	for k := 1; k < s.kit.Width; k <<= 1 {
		rotated, err := s.kit.Evaluator.RotateNew(ct, k)
		if err != nil {
			return nil, err
		}
		if err := s.kit.Evaluator.Add(ct, rotated, ct); err != nil {
			return nil, err
		}
	}
	return ct, nil
}

// Serve answers forward requests until the client sends MsgDone or closes
// the connection.
func (s *Server) Serve(p *Protocol) error {
	for {
		msg, err := p.Receive()
		if err == io.EOF || (err == nil && msg.Type == MsgDone) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "receiving request")
		}
		if msg.Type != MsgForwardInput {
			err := errors.Errorf("unexpected message type %d", msg.Type)
			p.SendError(err)
			return err
		}

		payload, err := forwardPayload(msg)
		if err != nil {
			p.SendError(err)
			return err
		}
		if err := s.answer(p, payload); err != nil {
			p.SendError(err)
			return err
		}
	}
}

func (s *Server) answer(p *Protocol, req *ForwardPayload) error {
	if len(req.Ciphertexts) != 1 {
		return errors.Errorf("request %d carries %d ciphertexts, want 1", req.RequestID, len(req.Ciphertexts))
	}
	ct := hefloat.NewCiphertext(s.kit.Params, 1, req.Level)
	if err := ct.UnmarshalBinary(req.Ciphertexts[0]); err != nil {
		return errors.Wrapf(err, "decoding request %d", req.RequestID)
	}

	start := time.Now()
	sums, err := s.WeightedSums(ct)
	if err != nil {
		return errors.Wrapf(err, "request %d", req.RequestID)
	}

	out := make([][]byte, len(sums))
	for i, sum := range sums {
		if out[i], err = sum.MarshalBinary(); err != nil {
			return errors.Wrapf(err, "encoding sum %d", i)
		}
	}
	s.Log.Printf("Answered request %d with %d sums in %.0fus", req.RequestID, len(out), utils.DurationUS(time.Since(start)))
	return p.SendSums(req.RequestID, out, sums[0].Level(), sums[0].Scale.Float64())
}
