package sdk

import (
	"context"

	"go.uber.org/zap"

	"github.com/suinft/nft-studio-go/pkg/model"
)

const (
	synthesizedNamePrefix = "Loyalty Card #"
	customerPrefix        = "Customer: "
	unknownCustomer       = "Customer: Unknown"
)

// FilterOwned keeps objects whose type is exactly the contract's Loyalty or
// NFT struct and projects them into display records. Endpoint order is kept;
// nothing is deduplicated or sorted.
func FilterOwned(objs []model.OwnedObject, contract model.ContractConfig) []model.DisplayNFT {
	loyalty, nft := contract.LoyaltyType(), contract.NFTType()
	out := make([]model.DisplayNFT, 0, len(objs))
	for _, obj := range objs {
		if obj.Type != loyalty && obj.Type != nft {
			continue
		}
		out = append(out, Normalize(obj))
	}
	return out
}

// Normalize projects one owned object into a DisplayNFT, synthesizing the
// name and description when the object lacks them.
func Normalize(obj model.OwnedObject) model.DisplayNFT {
	d := model.DisplayNFT{ID: obj.ObjectID}

	if name, ok := obj.Field("name"); ok {
		d.Name = name
	} else {
		d.Name = synthesizedNamePrefix + lastN(obj.ObjectID, 6)
	}

	if desc, ok := obj.Field("description"); ok {
		d.Description = desc
	} else if customer, ok := obj.Field("customer_id"); ok {
		d.Description = customerPrefix + customer
	} else {
		d.Description = unknownCustomer
	}

	if img, ok := obj.Field("img_url"); ok {
		d.ImageURL = &img
	} else if img, ok := obj.Field("image_url"); ok {
		d.ImageURL = &img
	}
	return d
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// Gallery lists the NFTs an account owns under a contract.
type Gallery struct {
	reader   ObjectReader
	explorer func(id string) string
}

// NewGallery returns a Gallery backed by reader. explorer, when non-nil,
// turns object ids into explorer links.
func NewGallery(reader ObjectReader, explorer func(id string) string) *Gallery {
	return &Gallery{reader: reader, explorer: explorer}
}

// Fetch queries owner's objects and applies FilterOwned.
func (g *Gallery) Fetch(ctx context.Context, owner string, contract model.ContractConfig) ([]model.DisplayNFT, error) {
	objs, err := g.reader.GetOwnedObjects(ctx, owner)
	if err != nil {
		zap.L().Error("Error fetching NFTs", zap.String("owner", owner), zap.Error(err))
		return nil, &model.QueryError{Op: "fetch NFTs", Err: err}
	}
	nfts := FilterOwned(objs, contract)
	if g.explorer != nil {
		for i := range nfts {
			nfts[i].ExplorerURL = g.explorer(nfts[i].ID)
		}
	}
	zap.L().Debug("NFTs fetched", zap.String("owner", owner), zap.Int("owned", len(objs)), zap.Int("matched", len(nfts)))
	return nfts, nil
}
