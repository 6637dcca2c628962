package db

import (
	"context"
	"fmt"

	"tooldex/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LandingStore wraps the MongoDB collections where scrape and feed results
// land before replication into the serving database.
type LandingStore struct {
	mongoClient *mongo.Client
	database    *mongo.Database
	products    *mongo.Collection
	news        *mongo.Collection
}

// NewLandingStore creates a new landing store client
func NewLandingStore(connectionString, databaseName, productsCollection string) *LandingStore {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		// Return store with nil - error will be caught during Connect()
		return &LandingStore{}
	}

	database := mongoClient.Database(databaseName)

	return &LandingStore{
		mongoClient: mongoClient,
		database:    database,
		products:    database.Collection(productsCollection),
		news:        database.Collection("news_items"),
	}
}

// Connect establishes connection to MongoDB
func (s *LandingStore) Connect(ctx context.Context) error {
	if s.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return s.mongoClient.Ping(ctx, nil)
}

// Close closes the MongoDB connection
func (s *LandingStore) Close(ctx context.Context) error {
	if s.mongoClient == nil {
		return nil
	}
	return s.mongoClient.Disconnect(ctx)
}

// SaveScrapedProduct upserts a scraped product keyed by its source URL
func (s *LandingStore) SaveScrapedProduct(ctx context.Context, product *domain.ScrapedProduct) error {
	if s.products == nil {
		return fmt.Errorf("products collection not initialized")
	}

	filter := bson.M{"source_url": product.SourceURL}
	update := bson.M{"$set": product}
	opts := options.Update().SetUpsert(true)

	_, err := s.products.UpdateOne(ctx, filter, update, opts)
	return err
}

// SaveNewsItem upserts an ingested news item keyed by its URL
func (s *LandingStore) SaveNewsItem(ctx context.Context, item *domain.NewsItem) error {
	if s.news == nil {
		return fmt.Errorf("news collection not initialized")
	}

	filter := bson.M{"url": item.URL}
	update := bson.M{"$set": item}
	opts := options.Update().SetUpsert(true)

	_, err := s.news.UpdateOne(ctx, filter, update, opts)
	return err
}

// AllSourceURLs fetches all scraped source URLs and returns them as a map (set)
func (s *LandingStore) AllSourceURLs(ctx context.Context) (map[string]bool, error) {
	if s.products == nil {
		return nil, fmt.Errorf("products collection not initialized")
	}

	cursor, err := s.products.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"source_url": 1, "_id": 0}))
	if err != nil {
		return nil, fmt.Errorf("failed to query source URLs: %w", err)
	}
	defer cursor.Close(ctx)

	urlSet := make(map[string]bool)
	for cursor.Next(ctx) {
		var result struct {
			SourceURL string `bson:"source_url"`
		}
		if err := cursor.Decode(&result); err != nil {
			continue // Skip invalid documents
		}
		if result.SourceURL != "" {
			urlSet[result.SourceURL] = true
		}
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return urlSet, nil
}

// AllScrapedProducts reads every landed scraped product
func (s *LandingStore) AllScrapedProducts(ctx context.Context) ([]domain.ScrapedProduct, error) {
	if s.products == nil {
		return nil, fmt.Errorf("products collection not initialized")
	}

	cursor, err := s.products.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query scraped products: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.ScrapedProduct
	for cursor.Next(ctx) {
		var p domain.ScrapedProduct
		if err := cursor.Decode(&p); err != nil {
			continue // Skip invalid documents
		}
		out = append(out, p)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return out, nil
}
