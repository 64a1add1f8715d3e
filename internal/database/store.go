package database

import (
	"context"
	"time"

	"legalcase-platform/models"
	"legalcase-platform/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store wraps the Mongo database and exposes typed access to the
// platform collections.
type Store struct {
	db *mongo.Database
}

func NewStore(db *mongo.Database) *Store {
	return &Store{db: db}
}

func (s *Store) projects() *mongo.Collection  { return s.db.Collection("projects") }
func (s *Store) documents() *mongo.Collection { return s.db.Collection("documents") }
func (s *Store) chunks() *mongo.Collection    { return s.db.Collection("document_chunks") }
func (s *Store) messages() *mongo.Collection  { return s.db.Collection("chat_messages") }
func (s *Store) uploads() *mongo.Collection   { return s.db.Collection("uploads") }

func storeErr(op string, err error) error {
	return services.E(services.KindRecordStore, op, err)
}

// Projects

func (s *Store) CreateProject(ctx context.Context, project *models.Project) error {
	project.ID = primitive.NewObjectID()
	project.CreatedAt = time.Now()

	if _, err := s.projects().InsertOne(ctx, project); err != nil {
		return storeErr("store.create_project", err)
	}
	return nil
}

func (s *Store) GetProject(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	err := s.projects().FindOne(ctx, bson.M{"_id": id}).Decode(&project)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("store.get_project", err)
	}
	return &project, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := s.projects().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storeErr("store.list_projects", err)
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, storeErr("store.list_projects", err)
	}
	return projects, nil
}

// Documents and chunks

func (s *Store) InsertDocument(ctx context.Context, doc *models.Document) error {
	if _, err := s.documents().InsertOne(ctx, doc); err != nil {
		return storeErr("store.insert_document", err)
	}
	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.documents().DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return storeErr("store.delete_document", err)
	}
	return nil
}

func (s *Store) InsertChunks(ctx context.Context, chunks []models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	docs := make([]interface{}, len(chunks))
	for i := range chunks {
		docs[i] = chunks[i]
	}
	if _, err := s.chunks().InsertMany(ctx, docs); err != nil {
		return storeErr("store.insert_chunks", err)
	}
	return nil
}

func (s *Store) ListDocumentsByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Document, error) {
	opts := options.Find().
		SetSort(bson.M{"uploaded_at": -1}).
		SetProjection(bson.M{"content": 0})
	cursor, err := s.documents().Find(ctx, bson.M{"project_id": projectID}, opts)
	if err != nil {
		return nil, storeErr("store.list_documents", err)
	}
	defer cursor.Close(ctx)

	documents := []models.Document{}
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, storeErr("store.list_documents", err)
	}
	return documents, nil
}

// Chat history

func (s *Store) InsertMessage(ctx context.Context, msg *models.ChatMessage) error {
	msg.ID = primitive.NewObjectID()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if _, err := s.messages().InsertOne(ctx, msg); err != nil {
		return storeErr("store.insert_message", err)
	}
	return nil
}

func (s *Store) ListMessagesByProject(ctx context.Context, projectID primitive.ObjectID, limit int64) ([]models.ChatMessage, error) {
	opts := options.Find().SetSort(bson.M{"created_at": 1})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := s.messages().Find(ctx, bson.M{"project_id": projectID}, opts)
	if err != nil {
		return nil, storeErr("store.list_messages", err)
	}
	defer cursor.Close(ctx)

	messages := []models.ChatMessage{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, storeErr("store.list_messages", err)
	}
	return messages, nil
}

// Uploads

func (s *Store) CreateUpload(ctx context.Context, upload *models.Upload) error {
	now := time.Now()
	upload.CreatedAt = now
	upload.UpdatedAt = now
	upload.Status = models.UploadStatusPending

	if _, err := s.uploads().InsertOne(ctx, upload); err != nil {
		return storeErr("store.create_upload", err)
	}
	return nil
}

func (s *Store) GetUpload(ctx context.Context, id string) (*models.Upload, error) {
	var upload models.Upload
	err := s.uploads().FindOne(ctx, bson.M{"_id": id}).Decode(&upload)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("store.get_upload", err)
	}
	return &upload, nil
}

func (s *Store) DeleteUploadRecord(ctx context.Context, id string) error {
	if _, err := s.uploads().DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return storeErr("store.delete_upload", err)
	}
	return nil
}

// SetUploadStatus transitions an upload and records the outcome fields
// supplied in update.
func (s *Store) SetUploadStatus(ctx context.Context, id string, status string, update bson.M) error {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}
	for k, v := range update {
		set[k] = v
	}
	if _, err := s.uploads().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		return storeErr("store.set_upload_status", err)
	}
	return nil
}
