package usecase

import (
	"context"

	"service-dispatch/internal/data/entity"
	"service-dispatch/internal/data/repository"
	"service-dispatch/internal/dto/request"
	"service-dispatch/internal/dto/response"
	"service-dispatch/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WalletService interface {
	GetWallet(ctx context.Context, vendorID uuid.UUID) (*response.WalletResponse, error)
	GetTransactions(ctx context.Context, vendorID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TransactionResponse], error)
}

type walletService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewWalletService(repo *repository.Repository, log *zap.Logger) WalletService {
	return &walletService{
		repo: repo,
		log:  log.With(zap.String("service", "wallet")),
	}
}

func (s *walletService) GetWallet(ctx context.Context, vendorID uuid.UUID) (*response.WalletResponse, error) {
	wallet, err := s.repo.Wallet.FindByOwner(ctx, vendorID, entity.WalletOwnerVendor)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, utils.NotFound("wallet", vendorID.String())
	}

	resp := response.WalletToResponse(wallet)
	return &resp, nil
}

func (s *walletService) GetTransactions(ctx context.Context, vendorID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TransactionResponse], error) {
	transactions, err := s.repo.Transaction.FindByOwner(ctx, vendorID, entity.WalletOwnerVendor, req.Limit(), req.Offset())
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Transaction.CountByOwner(ctx, vendorID, entity.WalletOwnerVendor)
	if err != nil {
		return nil, err
	}

	txResponses := make([]response.TransactionResponse, len(transactions))
	for i, t := range transactions {
		txResponses[i] = response.TransactionToResponse(t)
	}

	return response.NewPaginatedResponse(txResponses, req.Page, req.PerPage, total), nil
}
