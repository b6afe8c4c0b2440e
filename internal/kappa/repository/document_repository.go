package repository

import (
	"context"
	"fmt"

	"selkie-backend/internal/kappa/domain"
	"selkie-backend/pkg/graphdb"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	// Search matches query case-insensitively against filename and description, newest first.
	Search(ctx context.Context, query string, limit, skip int) ([]*domain.Document, int64, error)
}

var DocumentSchema = []string{
	"CREATE CONSTRAINT document_id_unique IF NOT EXISTS FOR (d:Document) REQUIRE d.id IS UNIQUE",
}

const (
	createDocument = `CREATE (d:Document {
	id: $id,
	filename: $filename,
	content_type: $content_type,
	description: $description,
	storage_uri: $storage_uri,
	owner_id: $owner_id,
	created_at: $created_at,
	updated_at: $updated_at
})`

	documentFilter = `MATCH (d:Document)
WHERE $query = ''
   OR toLower(d.filename) CONTAINS toLower($query)
   OR toLower(coalesce(d.description, '')) CONTAINS toLower($query)`

	searchDocuments = documentFilter + `
WITH d ORDER BY d.created_at DESC SKIP $skip LIMIT $limit
RETURN properties(d) AS d`

	countDocuments = documentFilter + `
RETURN count(d) AS total`
)

type documentRepository struct {
	db graphdb.Transactor
}

// NewDocumentRepository creates a new instance of DocumentRepository.
func NewDocumentRepository(db graphdb.Transactor) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.WithTransaction(ctx, graphdb.WriteAccess, func(ctx context.Context, tx graphdb.Tx) error {
		res, err := tx.Run(ctx, createDocument, map[string]any{
			"id":           doc.ID,
			"filename":     doc.Filename,
			"content_type": graphdb.NullIfEmpty(doc.ContentType),
			"description":  graphdb.NullIfEmpty(doc.Description),
			"storage_uri":  doc.StorageURI,
			"owner_id":     graphdb.NullIfEmpty(doc.OwnerID),
			"created_at":   doc.CreatedAt,
			"updated_at":   doc.UpdatedAt,
		})
		if err != nil {
			return err
		}
		_, err = res.Consume(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (r *documentRepository) Search(ctx context.Context, query string, limit, skip int) ([]*domain.Document, int64, error) {
	var (
		docs  []*domain.Document
		total int64
	)
	_, err := r.db.WithTransaction(ctx, graphdb.ReadAccess, func(ctx context.Context, tx graphdb.Tx) error {
		res, err := tx.Run(ctx, searchDocuments, map[string]any{"query": query, "skip": skip, "limit": limit})
		if err != nil {
			return err
		}
		rows, err := graphdb.CollectProps(ctx, res, "d")
		if err != nil {
			return err
		}
		docs = make([]*domain.Document, 0, len(rows))
		for _, p := range rows {
			docs = append(docs, documentFromProps(p))
		}

		res, err = tx.Run(ctx, countDocuments, map[string]any{"query": query})
		if err != nil {
			return err
		}
		total, err = graphdb.SingleInt(ctx, res, "total")
		return err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("search documents: %w", err)
	}
	return docs, total, nil
}

func documentFromProps(p graphdb.Props) *domain.Document {
	return &domain.Document{
		ID:          p.String("id"),
		Filename:    p.String("filename"),
		ContentType: p.String("content_type"),
		Description: p.String("description"),
		StorageURI:  p.String("storage_uri"),
		OwnerID:     p.String("owner_id"),
		CreatedAt:   p.Time("created_at"),
		UpdatedAt:   p.Time("updated_at"),
	}
}
