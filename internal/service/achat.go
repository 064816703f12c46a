package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kiwis93160/POS-OUIOUI/internal/domain"
	"github.com/kiwis93160/POS-OUIOUI/internal/repo"
	"go.uber.org/zap"
)

type AchatService struct {
	achats repo.AchatRepository
	logger *zap.SugaredLogger
}

func NewAchatService(achats repo.AchatRepository, logger *zap.SugaredLogger) *AchatService {
	return &AchatService{
		achats: achats,
		logger: logger,
	}
}

// RecordAchat books a purchase and feeds a new lot onto the ingredient,
// which recomputes its stock and weighted average price. Both writes
// are one gateway transaction: no achat without its lot.
func (s *AchatService) RecordAchat(ctx context.Context, ingredientID string, quantite, prixTotal float64) error {
	if quantite <= 0 {
		return fmt.Errorf("quantite must be positive, got %v", quantite)
	}

	now := time.Now()
	achat := &domain.Achat{
		IngredientID: ingredientID,
		Quantite:     quantite,
		PrixTotal:    prixTotal,
		DateAchat:    now,
	}
	lot := domain.Lot{
		QteInitiale:  quantite,
		QteRestante:  quantite,
		PrixUnitaire: prixTotal / quantite,
		DateAchat:    now,
	}

	if err := s.achats.CreateWithLot(ctx, achat, lot); err != nil {
		return fmt.Errorf("failed to record achat: %w", err)
	}

	s.logger.Infow("achat recorded", "ingredient_id", ingredientID, "quantite", quantite, "prix_total", prixTotal)

	return nil
}
