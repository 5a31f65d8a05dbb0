package split

import (
	"github.com/pkg/errors"
	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/he/hefloat"
)

// DefaultLogN is the ring degree used by the commands.
const DefaultLogN = 13

// Context holds the client side key material. It must not leave the client.
type Context struct {
	Params    hefloat.Parameters
	Encoder   *hefloat.Encoder
	Encryptor *rlwe.Encryptor
	Decryptor *rlwe.Decryptor

	evk   *rlwe.MemEvaluationKeySet
	width int
}

// ServerKit is what the server needs to evaluate on ciphertexts: public
// parameters and evaluation keys, no secret key.
type ServerKit struct {
	Params    hefloat.Parameters
	Encoder   *hefloat.Encoder
	Evaluator *hefloat.Evaluator
	// Width is the power of two the input is padded to; rotations up to
	// Width/2 have keys.
	Width int
}

// NewContext generates keys for inputs of inputNum values on a ring of
// degree 2^logN.
func NewContext(logN, inputNum int) (*Context, error) {
	params, err := hefloat.NewParametersFromLiteral(hefloat.ParametersLiteral{
		LogN:            logN,
		LogQ:            []int{55, 40},
		LogP:            []int{55},
		LogDefaultScale: 40,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating CKKS parameters")
	}

	width := nextPowerOfTwo(inputNum)
	if width > params.MaxSlots() {
		return nil, errors.Errorf("input of %d values does not fit %d slots", inputNum, params.MaxSlots())
	}

	kgen := hefloat.NewKeyGenerator(params)
	sk, pk := kgen.GenKeyPairNew()
	rlk := kgen.GenRelinearizationKeyNew(sk)

	var galEls []uint64
	for k := 1; k < width; k <<= 1 {
		galEls = append(galEls, params.GaloisElement(k))
	}
	evk := rlwe.NewMemEvaluationKeySet(rlk, kgen.GenGaloisKeysNew(galEls, sk)...)

	return &Context{
		Params:    params,
		Encoder:   hefloat.NewEncoder(params),
		Encryptor: hefloat.NewEncryptor(params, pk),
		Decryptor: hefloat.NewDecryptor(params, sk),
		evk:       evk,
		width:     width,
	}, nil
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// ServerKit builds the evaluation side of the context.
func (c *Context) ServerKit() *ServerKit {
	return &ServerKit{
		Params:    c.Params,
		Encoder:   hefloat.NewEncoder(c.Params),
		Evaluator: hefloat.NewEvaluator(c.Params, c.evk),
		Width:     c.width,
	}
}

// Encrypt packs values into the first slots of a fresh ciphertext.
func (c *Context) Encrypt(values []float64) (*rlwe.Ciphertext, error) {
	if len(values) > c.width {
		return nil, errors.Errorf("cannot encrypt %d values, width is %d", len(values), c.width)
	}
	slots := make([]float64, c.Params.MaxSlots())
	copy(slots, values)

	pt := hefloat.NewPlaintext(c.Params, c.Params.MaxLevel())
	if err := c.Encoder.Encode(slots, pt); err != nil {
		return nil, errors.Wrap(err, "encoding input")
	}
	ct, err := c.Encryptor.EncryptNew(pt)
	return ct, errors.Wrap(err, "encrypting input")
}

// DecryptFirst returns the real part of slot 0 of every ciphertext.
func (c *Context) DecryptFirst(cts []*rlwe.Ciphertext) ([]float64, error) {
	result := make([]float64, len(cts))
	decoded := make([]complex128, c.Params.MaxSlots())
	for i, ct := range cts {
		pt := c.Decryptor.DecryptNew(ct)
		if err := c.Encoder.Decode(pt, decoded); err != nil {
			return nil, errors.Wrapf(err, "decoding ciphertext %d", i)
		}
		result[i] = real(decoded[0])
	}
	return result, nil
}
