package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cardioassist/cardio-api/internal/core/domain"
)

const collectionIntake = "intake_records"

type IntakeRepository struct {
	col *mongo.Collection
}

func NewIntakeRepository(db *mongo.Database) *IntakeRepository {
	return &IntakeRepository{col: db.Collection(collectionIntake)}
}

type submitterDoc struct {
	Name      string  `bson:"name"`
	Email     string  `bson:"email"`
	Specialty *string `bson:"specialty"`
	Hospital  *string `bson:"hospital"`
}

type intakeDoc struct {
	ID               string        `bson:"_id"`
	SubmittingUserID string        `bson:"user_id"`
	PatientName      string        `bson:"patient_name"`
	PatientAge       int           `bson:"patient_age"`
	Symptoms         string        `bson:"symptoms"`
	BloodPressure    *string       `bson:"blood_pressure"`
	HeartRate        *string       `bson:"heart_rate"`
	MedicalHistory   *string       `bson:"medical_history"`
	CreatedAt        time.Time     `bson:"created_at"`
	Submitter        *submitterDoc `bson:"submitter,omitempty"`
}

func (r *IntakeRepository) Create(ctx context.Context, rec *domain.IntakeRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := intakeDoc{
		ID:               rec.ID,
		SubmittingUserID: rec.SubmittingUserID,
		PatientName:      rec.PatientName,
		PatientAge:       rec.PatientAge,
		Symptoms:         rec.Symptoms,
		BloodPressure:    rec.BloodPressure,
		HeartRate:        rec.HeartRate,
		MedicalHistory:   rec.MedicalHistory,
		CreatedAt:        rec.CreatedAt.UTC(),
	}
	if s := rec.Submitter; s != nil {
		doc.Submitter = &submitterDoc{Name: s.Name, Email: s.Email, Specialty: s.Specialty, Hospital: s.Hospital}
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return domain.NewPersistenceError("insert intake record", err)
	}
	return nil
}

func (r *IntakeRepository) ListBySubmitter(ctx context.Context, userID string) ([]domain.IntakeRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, domain.NewPersistenceError("list intake records", err)
	}
	defer cur.Close(ctx)

	var docs []intakeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.NewPersistenceError("decode intake records", err)
	}

	out := make([]domain.IntakeRecord, 0, len(docs))
	for _, d := range docs {
		rec := domain.IntakeRecord{
			ID:               d.ID,
			SubmittingUserID: d.SubmittingUserID,
			PatientName:      d.PatientName,
			PatientAge:       d.PatientAge,
			Symptoms:         d.Symptoms,
			BloodPressure:    d.BloodPressure,
			HeartRate:        d.HeartRate,
			MedicalHistory:   d.MedicalHistory,
			CreatedAt:        d.CreatedAt.UTC(),
		}
		if s := d.Submitter; s != nil {
			rec.Submitter = &domain.Submitter{Name: s.Name, Email: s.Email, Specialty: s.Specialty, Hospital: s.Hospital}
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *IntakeRepository) DeleteBySubmitter(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return domain.NewPersistenceError("delete intake records", err)
	}
	return nil
}

func (r *IntakeRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}
