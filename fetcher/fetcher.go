// Package fetcher implements the six read-only services that answer
// participant GETs: each owns a single eventbus.Listener of its topic and
// never touches primary storage directly, except the Model fetcher which
// uses the round id stamped on its topic update to pull the durable blob
// out of model.Store. Every Get is fire-and-return, non-blocking, no
// back-pressure across participants, `false` standing in for the
// protocol's `None` when the topic's latest value is Invalidate.
package fetcher

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/xaynet-labs/pet-coordinator/eventbus"
	"github.com/xaynet-labs/pet-coordinator/mask"
	"github.com/xaynet-labs/pet-coordinator/model"
	"github.com/xaynet-labs/pet-coordinator/round"
)

// RoundParamsFetcher answers GET /params.
type RoundParamsFetcher struct {
	listener *eventbus.Listener[round.Params]
}

// NewRoundParamsFetcher returns a fetcher reading bus's RoundParams topic.
func NewRoundParamsFetcher(bus *eventbus.Bus) *RoundParamsFetcher {
	return &RoundParamsFetcher{listener: bus.RoundParams.NewListener()}
}

// Get returns the current round parameters, or ok=false if invalidated.
func (f *RoundParamsFetcher) Get() (params round.Params, ok bool) {
	u := f.listener.GetLatest()
	if u.Kind != eventbus.KindNew {
		return round.Params{}, false
	}
	return *u.Value, true
}

// ScalarFetcher answers GET /scalar.
type ScalarFetcher struct {
	listener *eventbus.Listener[mask.MaskUnit]
}

// NewScalarFetcher returns a fetcher reading bus's Scalar topic.
func NewScalarFetcher(bus *eventbus.Bus) *ScalarFetcher {
	return &ScalarFetcher{listener: bus.Scalar.NewListener()}
}

// Get returns the round's running masked scalar, or ok=false if
// invalidated.
func (f *ScalarFetcher) Get() (scalar mask.MaskUnit, ok bool) {
	u := f.listener.GetLatest()
	if u.Kind != eventbus.KindNew {
		return mask.MaskUnit{}, false
	}
	return *u.Value, true
}

// SumDictFetcher answers GET /sums.
type SumDictFetcher struct {
	listener *eventbus.Listener[round.SumDict]
}

// NewSumDictFetcher returns a fetcher reading bus's SumDict topic.
func NewSumDictFetcher(bus *eventbus.Bus) *SumDictFetcher {
	return &SumDictFetcher{listener: bus.SumDict.NewListener()}
}

// Get returns the frozen SumDict, or ok=false if invalidated.
func (f *SumDictFetcher) Get() (dict round.SumDict, ok bool) {
	u := f.listener.GetLatest()
	if u.Kind != eventbus.KindNew {
		return round.SumDict{}, false
	}
	return *u.Value, true
}

// SeedDictFetcher answers GET /seeds/{sum_pk_hex}.
type SeedDictFetcher struct {
	listener *eventbus.Listener[round.SeedDict]
}

// NewSeedDictFetcher returns a fetcher reading bus's SeedDict topic.
func NewSeedDictFetcher(bus *eventbus.Bus) *SeedDictFetcher {
	return &SeedDictFetcher{listener: bus.SeedDict.NewListener()}
}

// SharesFor decodes sumPkHex and returns that sum participant's partial
// seed dict. ok is false if the SeedDict topic is invalidated; found is
// false if the topic has a value but sumPkHex names no known sum key ,
// the 204-vs-404 distinction the HTTP façade maps onto the response.
func (f *SeedDictFetcher) SharesFor(sumPkHex string) (shares map[string][]byte, ok bool, found bool, err error) {
	u := f.listener.GetLatest()
	if u.Kind != eventbus.KindNew {
		return nil, false, false, nil
	}
	pk, err := hex.DecodeString(sumPkHex)
	if err != nil {
		return nil, true, false, fmt.Errorf("fetcher: decoding sum_pk_hex: %w", err)
	}
	shares, found = u.Value.SharesFor(string(pk))
	return shares, true, found, nil
}

// MaskLengthFetcher answers GET /length.
type MaskLengthFetcher struct {
	listener *eventbus.Listener[int]
}

// NewMaskLengthFetcher returns a fetcher reading bus's MaskLength topic.
func NewMaskLengthFetcher(bus *eventbus.Bus) *MaskLengthFetcher {
	return &MaskLengthFetcher{listener: bus.MaskLength.NewListener()}
}

// Get returns the round's model length, or ok=false if invalidated.
func (f *MaskLengthFetcher) Get() (length int, ok bool) {
	u := f.listener.GetLatest()
	if u.Kind != eventbus.KindNew {
		return 0, false
	}
	return *u.Value, true
}

// ModelFetcher answers GET /model. Unlike the other five, it does not
// serve the listener's payload directly: the topic only signals that a
// round completed and names the round id, and the fetcher loads the
// actual (potentially large) blob from model.Store, matching the "Model
// ... may stream large blobs from object storage" note.
type ModelFetcher struct {
	listener *eventbus.Listener[model.Global]
	store    model.Store
}

// NewModelFetcher returns a fetcher reading bus's Model topic and
// resolving blobs from store.
func NewModelFetcher(bus *eventbus.Bus, store model.Store) *ModelFetcher {
	return &ModelFetcher{listener: bus.Model.NewListener(), store: store}
}

// Get returns the latest completed round's global model, or ok=false if
// no round has completed yet (or the topic was invalidated by a later
// round failing).
func (f *ModelFetcher) Get(ctx context.Context) (global model.Global, ok bool, err error) {
	u := f.listener.GetLatest()
	if u.Kind != eventbus.KindNew {
		return model.Global{}, false, nil
	}
	g, err := f.store.LoadModel(ctx, u.Value.RoundID)
	if err != nil {
		return model.Global{}, false, fmt.Errorf("fetcher: loading model for round %q: %w", u.Value.RoundID, err)
	}
	return g, true, nil
}

// Services bundles all six fetchers, the shape pet/httpapi wires its
// routes against.
type Services struct {
	RoundParams *RoundParamsFetcher
	Scalar      *ScalarFetcher
	SumDict     *SumDictFetcher
	SeedDict    *SeedDictFetcher
	MaskLength  *MaskLengthFetcher
	Model       *ModelFetcher
}

// NewServices builds all six fetchers against bus and store.
func NewServices(bus *eventbus.Bus, store model.Store) *Services {
	return &Services{
		RoundParams: NewRoundParamsFetcher(bus),
		Scalar:      NewScalarFetcher(bus),
		SumDict:     NewSumDictFetcher(bus),
		SeedDict:    NewSeedDictFetcher(bus),
		MaskLength:  NewMaskLengthFetcher(bus),
		Model:       NewModelFetcher(bus, store),
	}
}
