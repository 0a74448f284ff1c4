package repositories

import (
	"context"

	"bpoc/internal/models"

	"gorm.io/gorm"
)

type OfferRepository struct {
	DB *gorm.DB
}

func (r *OfferRepository) Create(ctx context.Context, offer *models.Offer) error {
	return r.DB.WithContext(ctx).Create(offer).Error
}

func (r *OfferRepository) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	var offer models.Offer
	if err := r.DB.WithContext(ctx).First(&offer, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrOfferNotFound)
	}
	return &offer, nil
}

func (r *OfferRepository) SetPDFObject(ctx context.Context, id, object string) error {
	return r.DB.WithContext(ctx).Model(&models.Offer{}).Where("id = ?", id).Update("pdf_object", object).Error
}
