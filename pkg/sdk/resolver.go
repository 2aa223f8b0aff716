package sdk

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/suinft/nft-studio-go/pkg/model"
)

// ObjectReader lists the objects owned by an address.
type ObjectReader interface {
	GetOwnedObjects(ctx context.Context, owner string) ([]model.OwnedObject, error)
}

// capabilityMarkers are the type substrings that identify a mint capability.
var capabilityMarkers = []string{"AdminCap", "MintCap", "mint_cap"}

// FindCapability returns the first object, in endpoint order, whose type
// contains a capability marker or the module name. Matching is by substring,
// so any object of the contract's module qualifies.
func FindCapability(objs []model.OwnedObject, module string) model.CapabilityState {
	for _, obj := range objs {
		if isCapabilityType(obj.Type, module) {
			return model.CapabilityFound(obj)
		}
	}
	return model.CapabilityAbsent()
}

func isCapabilityType(typ, module string) bool {
	if typ == "" {
		return false
	}
	for _, m := range capabilityMarkers {
		if strings.Contains(typ, m) {
			return true
		}
	}
	return module != "" && strings.Contains(typ, module)
}

// Resolver finds the mint capability held by an account.
type Resolver struct {
	reader ObjectReader
}

// NewResolver returns a Resolver backed by reader.
func NewResolver(reader ObjectReader) *Resolver {
	return &Resolver{reader: reader}
}

// Resolve queries owner's objects and applies FindCapability. A failed query
// yields a CapabilityError state, which is distinct from "not found".
func (r *Resolver) Resolve(ctx context.Context, owner, module string) model.CapabilityState {
	objs, err := r.reader.GetOwnedObjects(ctx, owner)
	if err != nil {
		zap.L().Error("capability search failed", zap.String("owner", owner), zap.Error(err))
		return model.CapabilityError(err)
	}
	state := FindCapability(objs, module)
	zap.L().Debug("capability search finished",
		zap.String("owner", owner),
		zap.Bool("found", state.Found),
		zap.String("capability", state.CapabilityID))
	return state
}
