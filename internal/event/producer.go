package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/utafrali/catalog/internal/domain"
	pkgkafka "github.com/utafrali/catalog/pkg/kafka"
	"github.com/utafrali/catalog/pkg/logger"
)

// TopicProductCreated carries one event per committed product.
const TopicProductCreated = "ecommerce.catalog.product.created"

// AggregateTypeProduct is the aggregate type of catalog events.
const AggregateTypeProduct = "product"

// SourceCatalogService identifies events originating from this service.
const SourceCatalogService = "catalog-service"

// ProductCreatedData is the payload for a product.created event.
type ProductCreatedData struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	SKU         string             `json:"sku"`
	Description string             `json:"description"`
	ImageCount  int                `json:"image_count"`
	Prices      []PriceCreatedData `json:"prices"`
}

// PriceCreatedData is one priced combination inside ProductCreatedData.
type PriceCreatedData struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// Producer publishes catalog domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the catalog service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishProductCreated publishes a product.created event for detail.
func (p *Producer) PublishProductCreated(ctx context.Context, detail *domain.ProductDetail) error {
	data := ProductCreatedData{
		ID:          detail.ID,
		Title:       detail.Title,
		SKU:         detail.SKU,
		Description: detail.Description,
		ImageCount:  len(detail.Images),
		Prices:      make([]PriceCreatedData, 0, len(detail.Prices)),
	}
	for _, pr := range detail.Prices {
		data.Prices = append(data.Prices, PriceCreatedData{
			ID:    pr.ID,
			Title: pr.Title(),
			Price: pr.Price,
			Stock: pr.Stock,
		})
	}

	event, err := pkgkafka.NewEvent(TopicProductCreated, detail.ID, AggregateTypeProduct, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create product.created event: %w", err)
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		event = event.WithCorrelationID(cid)
	}

	if err := p.kafka.Publish(ctx, TopicProductCreated, event); err != nil {
		return fmt.Errorf("publish product.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.created event",
		slog.String("product_id", detail.ID),
		slog.String("sku", detail.SKU),
	)

	return nil
}
