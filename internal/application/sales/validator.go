package sales

import (
	"context"

	"github.com/google/uuid"

	"github.com/orderpost/backend/internal/domain/sales"
)

// checkedKinds fixes the order in which reference kinds are verified, so the
// first offending kind reported for a bad batch is deterministic.
var checkedKinds = []sales.RefKind{
	sales.RefOrganization,
	sales.RefContragent,
	sales.RefContract,
	sales.RefWarehouse,
	sales.RefSalesManager,
	sales.RefLoyaltyCard,
	sales.RefNomenclature,
	sales.RefUnit,
	sales.RefPriceType,
}

// ReferenceValidator verifies every foreign reference of a batch before any
// row is written. IDs are collected across the whole batch and checked with
// one query per kind; a fresh set is built for every call.
type ReferenceValidator struct {
	checker sales.ReferenceChecker
}

// NewReferenceValidator creates a new reference validator
func NewReferenceValidator(checker sales.ReferenceChecker) *ReferenceValidator {
	return &ReferenceValidator{checker: checker}
}

// ValidateCreateBatch checks all references of a createBatch call.
// The first kind with missing IDs fails the whole batch with
// *sales.ValidationError.
func (v *ReferenceValidator) ValidateCreateBatch(ctx context.Context, reqs []CreateOrderRequest) error {
	sets := newRefSets()
	for i := range reqs {
		sets.addCreate(&reqs[i])
	}
	return v.check(ctx, sets)
}

// ValidateUpdateBatch checks all references of an updateBatch call
func (v *ReferenceValidator) ValidateUpdateBatch(ctx context.Context, reqs []UpdateOrderRequest) error {
	sets := newRefSets()
	for i := range reqs {
		sets.addUpdate(&reqs[i])
	}
	return v.check(ctx, sets)
}

func (v *ReferenceValidator) check(ctx context.Context, sets refSets) error {
	for _, kind := range checkedKinds {
		ids := sets.ids(kind)
		if len(ids) == 0 {
			continue
		}
		missing, err := v.checker.MissingIDs(ctx, kind, ids)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return &sales.ValidationError{Kind: kind, MissingIDs: missing}
		}
	}
	return nil
}

type refSets map[sales.RefKind]map[uuid.UUID]struct{}

func newRefSets() refSets {
	return make(refSets)
}

func (s refSets) add(kind sales.RefKind, id uuid.UUID) {
	if id == uuid.Nil {
		return
	}
	set, ok := s[kind]
	if !ok {
		set = make(map[uuid.UUID]struct{})
		s[kind] = set
	}
	set[id] = struct{}{}
}

func (s refSets) addOptional(kind sales.RefKind, id *uuid.UUID) {
	if id != nil {
		s.add(kind, *id)
	}
}

func (s refSets) addCreate(req *CreateOrderRequest) {
	s.add(sales.RefOrganization, req.OrganizationID)
	s.add(sales.RefContragent, req.ContragentID)
	s.addOptional(sales.RefContract, req.ContractID)
	s.addOptional(sales.RefWarehouse, req.WarehouseID)
	s.addOptional(sales.RefSalesManager, req.SalesManagerID)
	s.addOptional(sales.RefLoyaltyCard, req.LoyaltyCardID)
	s.addGoods(req.Goods)
}

func (s refSets) addUpdate(req *UpdateOrderRequest) {
	s.addOptional(sales.RefContract, req.ContractID)
	s.addOptional(sales.RefWarehouse, req.WarehouseID)
	s.addOptional(sales.RefSalesManager, req.SalesManagerID)
	s.addOptional(sales.RefLoyaltyCard, req.LoyaltyCardID)
	s.addGoods(req.Goods)
}

func (s refSets) addGoods(goods []GoodsItem) {
	for i := range goods {
		s.add(sales.RefNomenclature, goods[i].NomenclatureID)
		s.add(sales.RefUnit, goods[i].UnitID)
		s.addOptional(sales.RefPriceType, goods[i].PriceTypeID)
	}
}

func (s refSets) ids(kind sales.RefKind) []uuid.UUID {
	set := s[kind]
	if len(set) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}
