package repository

import (
	"context"
	"fmt"

	"selkie-backend/internal/djinn/domain"
	"selkie-backend/pkg/graphdb"
)

type ImageRepository interface {
	CreateImage(ctx context.Context, img *domain.Image) error
	// CreateDetection links obj to its image. It returns domain.ErrImageNotFound when the image is missing.
	CreateDetection(ctx context.Context, obj *domain.DetectedObject) error
	// Detections lists an image's detected objects, oldest first.
	Detections(ctx context.Context, imageID string) ([]*domain.DetectedObject, error)
}

var ImageSchema = []string{
	"CREATE CONSTRAINT image_id_unique IF NOT EXISTS FOR (i:Image) REQUIRE i.id IS UNIQUE",
	"CREATE CONSTRAINT detected_object_id_unique IF NOT EXISTS FOR (o:DetectedObject) REQUIRE o.id IS UNIQUE",
}

const (
	createImage = `CREATE (i:Image {
	id: $id,
	filename: $filename,
	content_type: $content_type,
	description: $description,
	storage_uri: $storage_uri,
	owner_id: $owner_id,
	created_at: $created_at,
	updated_at: $updated_at
})`

	createDetection = `MATCH (i:Image {id: $image_id})
CREATE (i)-[:HAS_DETECTION]->(o:DetectedObject {
	id: $id,
	image_id: $image_id,
	object_class: $object_class,
	confidence: $confidence,
	bounding_box: $bounding_box,
	latitude: $latitude,
	longitude: $longitude,
	created_at: $created_at
})
RETURN count(o) AS created`

	countImage = `MATCH (i:Image {id: $image_id}) RETURN count(i) AS n`

	listDetections = `MATCH (:Image {id: $image_id})-[:HAS_DETECTION]->(o:DetectedObject)
RETURN properties(o) AS o
ORDER BY o.created_at`
)

type imageRepository struct {
	db graphdb.Transactor
}

// NewImageRepository creates a new instance of ImageRepository.
func NewImageRepository(db graphdb.Transactor) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) CreateImage(ctx context.Context, img *domain.Image) error {
	_, err := r.db.WithTransaction(ctx, graphdb.WriteAccess, func(ctx context.Context, tx graphdb.Tx) error {
		res, err := tx.Run(ctx, createImage, map[string]any{
			"id":           img.ID,
			"filename":     img.Filename,
			"content_type": graphdb.NullIfEmpty(img.ContentType),
			"description":  graphdb.NullIfEmpty(img.Description),
			"storage_uri":  img.StorageURI,
			"owner_id":     graphdb.NullIfEmpty(img.OwnerID),
			"created_at":   img.CreatedAt,
			"updated_at":   img.UpdatedAt,
		})
		if err != nil {
			return err
		}
		_, err = res.Consume(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	return nil
}

func (r *imageRepository) CreateDetection(ctx context.Context, obj *domain.DetectedObject) error {
	var bbox any
	if len(obj.BoundingBox) > 0 {
		var err error
		if bbox, err = graphdb.EncodeJSON(obj.BoundingBox); err != nil {
			return fmt.Errorf("encode bounding box: %w", err)
		}
	}

	_, err := r.db.WithTransaction(ctx, graphdb.WriteAccess, func(ctx context.Context, tx graphdb.Tx) error {
		res, err := tx.Run(ctx, createDetection, map[string]any{
			"id":           obj.ID,
			"image_id":     obj.ImageID,
			"object_class": obj.ObjectClass,
			"confidence":   obj.Confidence,
			"bounding_box": bbox,
			"latitude":     graphdb.NullIfNil(obj.Latitude),
			"longitude":    graphdb.NullIfNil(obj.Longitude),
			"created_at":   obj.CreatedAt,
		})
		if err != nil {
			return err
		}
		created, err := graphdb.SingleInt(ctx, res, "created")
		if err != nil {
			return err
		}
		if created == 0 {
			return domain.ErrImageNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create detection: %w", err)
	}
	return nil
}

func (r *imageRepository) Detections(ctx context.Context, imageID string) ([]*domain.DetectedObject, error) {
	var out []*domain.DetectedObject
	_, err := r.db.WithTransaction(ctx, graphdb.ReadAccess, func(ctx context.Context, tx graphdb.Tx) error {
		params := map[string]any{"image_id": imageID}

		res, err := tx.Run(ctx, countImage, params)
		if err != nil {
			return err
		}
		n, err := graphdb.SingleInt(ctx, res, "n")
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrImageNotFound
		}

		res, err = tx.Run(ctx, listDetections, params)
		if err != nil {
			return err
		}
		rows, err := graphdb.CollectProps(ctx, res, "o")
		if err != nil {
			return err
		}
		out = make([]*domain.DetectedObject, 0, len(rows))
		for _, p := range rows {
			obj, err := DetectedObjectFromProps(p)
			if err != nil {
				return err
			}
			out = append(out, obj)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list detections for %s: %w", imageID, err)
	}
	return out, nil
}

// DetectedObjectFromProps rebuilds a detected object from its node properties.
func DetectedObjectFromProps(p graphdb.Props) (*domain.DetectedObject, error) {
	obj := &domain.DetectedObject{
		ID:          p.String("id"),
		ImageID:     p.String("image_id"),
		ObjectClass: p.String("object_class"),
		Confidence:  p.Float("confidence"),
		Latitude:    p.FloatPtr("latitude"),
		Longitude:   p.FloatPtr("longitude"),
		CreatedAt:   p.Time("created_at"),
	}
	if err := p.JSON("bounding_box", &obj.BoundingBox); err != nil {
		return nil, err
	}
	return obj, nil
}
