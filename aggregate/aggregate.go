// Package aggregate implements the masked-aggregation engine: a running
// modular sum of masked contributions, and the unmasking step that
// reveals only the sum of plaintexts once the aggregate mask has been
// reconstructed from a threshold of sum participants.
package aggregate

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/xaynet-labs/pet-coordinator/mask"
	"github.com/xaynet-labs/pet-coordinator/model"
)

// ErrAggregationInvariant covers every shape or count invariant violation
// in this package: too many aggregators, mismatched config/length, or an
// unmasking mask incompatible with the accumulated aggregation.
var ErrAggregationInvariant = errors.New("aggregate: invariant violated")

// Aggregation is a running sum of masked model updates and scalars,
// modulo the round's mask_config prime order.
type Aggregation struct {
	maxAggregators int
	modelLength    int
	cfg            mask.Config

	count  int
	model  mask.MaskVect
	scalar mask.MaskUnit
	seeded bool
}

// New returns an empty Aggregation bound to cfg, modelLength and a cap on
// the number of contributions it will accept.
func New(cfg mask.Config, modelLength, maxAggregators int) *Aggregation {
	return &Aggregation{
		maxAggregators: maxAggregators,
		modelLength:    modelLength,
		cfg:            cfg,
	}
}

// Add folds one participant's masked model and masked scalar into the
// running sum, enforcing the count cap and shape compatibility.
func (a *Aggregation) Add(maskedModel mask.MaskVect, maskedScalar mask.MaskUnit) error {
	if a.count >= a.maxAggregators {
		return fmt.Errorf("%w: count %d exceeds max aggregators %d", ErrAggregationInvariant, a.count, a.maxAggregators)
	}
	if maskedModel.Config != a.cfg || maskedScalar.Config != a.cfg {
		return fmt.Errorf("%w: mask config mismatch", ErrAggregationInvariant)
	}
	if maskedModel.Len() != a.modelLength {
		return fmt.Errorf("%w: model length %d != %d", ErrAggregationInvariant, maskedModel.Len(), a.modelLength)
	}

	if !a.seeded {
		a.model = maskedModel
		a.scalar = maskedScalar
		a.seeded = true
		a.count = 1
		return nil
	}

	sum, err := a.model.Add(maskedModel)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAggregationInvariant, err)
	}
	scalarSum, err := a.scalar.Add(maskedScalar)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAggregationInvariant, err)
	}

	a.model = sum
	a.scalar = scalarSum
	a.count++
	return nil
}

// Count returns the number of contributions folded in so far.
func (a *Aggregation) Count() int {
	return a.count
}

// Scalar returns the running masked scalar sum, the value published on
// the Scalar topic once Update closes so Sum2 participants can fetch
// the normalization factor alongside the mask length.
func (a *Aggregation) Scalar() mask.MaskUnit {
	return a.scalar
}

// ValidateUnmasking checks that best is shape-compatible with the
// accumulated aggregation before Unmask subtracts it.
func (a *Aggregation) ValidateUnmasking(best mask.MaskObject) error {
	if !a.seeded {
		return fmt.Errorf("%w: aggregation is empty", ErrAggregationInvariant)
	}
	if best.Vect.Config != a.cfg || best.Unit.Config != a.cfg {
		return fmt.Errorf("%w: reconstructed mask config mismatch", ErrAggregationInvariant)
	}
	if best.Vect.Len() != a.modelLength {
		return fmt.Errorf("%w: reconstructed mask length %d != %d", ErrAggregationInvariant, best.Vect.Len(), a.modelLength)
	}
	return nil
}

// Unmask subtracts the reconstructed aggregate mask from the running sum
// and divides by the contribution count, producing the round's global
// model. It runs ValidateUnmasking itself before subtracting.
func (a *Aggregation) Unmask(best mask.MaskObject) (model.Global, error) {
	if err := a.ValidateUnmasking(best); err != nil {
		return model.Global{}, err
	}

	unmaskedVect, err := a.model.Sub(best.Vect)
	if err != nil {
		return model.Global{}, fmt.Errorf("%w: %v", ErrAggregationInvariant, err)
	}

	values := make([]float64, unmaskedVect.Len())
	p := mask.PrimeOrder(a.cfg)
	for i, w := range unmaskedVect.Weights {
		values[i] = toSignedFloat(w, p) / float64(a.count)
	}

	return model.Global{Values: values}, nil
}

// toSignedFloat interprets a field element w ∈ [0,p) as a signed value,
// treating the top half of the group as the negative range, the
// standard convention for recovering signed plaintexts from modular
// fixed-point arithmetic.
func toSignedFloat(w, p *big.Int) float64 {
	half := new(big.Int).Rsh(p, 1)
	if w.Cmp(half) > 0 {
		signed := new(big.Int).Sub(w, p)
		f, _ := new(big.Float).SetInt(signed).Float64()
		return f
	}
	f, _ := new(big.Float).SetInt(w).Float64()
	return f
}
