package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseDetails carries the catalog metadata of an exercise. ID is the
// external catalog identifier; it is what makes an exercise unique within
// a single day.
type ExerciseDetails struct {
	ID           string   `bson:"id" json:"id"`
	Name         string   `bson:"name" json:"name"`
	BodyPart     string   `bson:"bodyPart,omitempty" json:"bodyPart,omitempty"`
	Target       string   `bson:"target,omitempty" json:"target,omitempty"`
	Equipment    string   `bson:"equipment,omitempty" json:"equipment,omitempty"`
	GifURL       string   `bson:"gifUrl,omitempty" json:"gifUrl,omitempty"`
	Reps         int      `bson:"reps" json:"reps"`
	Sets         int      `bson:"sets" json:"sets"`
	Instructions []string `bson:"instructions,omitempty" json:"instructions,omitempty"`
}

// VideoRecommendation is a single recommended instructional video.
type VideoRecommendation struct {
	VideoID   string `bson:"videoId" json:"videoId"`
	Title     string `bson:"title,omitempty" json:"title,omitempty"`
	Thumbnail string `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
}

// Exercise is one exercise scheduled on one day of a user's plan. Adding the
// same catalog exercise to several days creates one document per day.
type Exercise struct {
	ID                   primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	UserID               primitive.ObjectID    `bson:"userId" json:"userId"`
	DayID                primitive.ObjectID    `bson:"dayId" json:"dayId"`
	Details              ExerciseDetails       `bson:"exerciseDetails" json:"exerciseDetails"`
	VideoRecommendations []VideoRecommendation `bson:"videoRecommendations" json:"videoRecommendations"`

	// MediaObjectKey points at an optional user-uploaded demo clip in object
	// storage. Exposed to clients only through presigned URLs.
	MediaObjectKey string `bson:"mediaObjectKey,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// RemoveVideos drops every recommendation whose videoId is in videoIDs.
func (e *Exercise) RemoveVideos(videoIDs []string) {
	if len(videoIDs) == 0 || len(e.VideoRecommendations) == 0 {
		return
	}
	removed := make(map[string]struct{}, len(videoIDs))
	for _, id := range videoIDs {
		removed[id] = struct{}{}
	}
	kept := e.VideoRecommendations[:0]
	for _, video := range e.VideoRecommendations {
		if _, ok := removed[video.VideoID]; !ok {
			kept = append(kept, video)
		}
	}
	e.VideoRecommendations = kept
}

// AddVideos appends recommendations to the end of the list.
func (e *Exercise) AddVideos(videos []VideoRecommendation) {
	e.VideoRecommendations = append(e.VideoRecommendations, videos...)
}

// ExerciseDetailsPatch is a partial update of ExerciseDetails. Nil fields are
// preserved from the existing record. The catalog id is deliberately not
// patchable: changing it could silently collide with another exercise on the
// same day.
type ExerciseDetailsPatch struct {
	Name         *string   `json:"name,omitempty"`
	BodyPart     *string   `json:"bodyPart,omitempty"`
	Target       *string   `json:"target,omitempty"`
	Equipment    *string   `json:"equipment,omitempty"`
	GifURL       *string   `json:"gifUrl,omitempty"`
	Reps         *int      `json:"reps,omitempty"`
	Sets         *int      `json:"sets,omitempty"`
	Instructions *[]string `json:"instructions,omitempty"`
}

// Apply merges the patch into details field by field.
func (p ExerciseDetailsPatch) Apply(d *ExerciseDetails) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.BodyPart != nil {
		d.BodyPart = *p.BodyPart
	}
	if p.Target != nil {
		d.Target = *p.Target
	}
	if p.Equipment != nil {
		d.Equipment = *p.Equipment
	}
	if p.GifURL != nil {
		d.GifURL = *p.GifURL
	}
	if p.Reps != nil {
		d.Reps = *p.Reps
	}
	if p.Sets != nil {
		d.Sets = *p.Sets
	}
	if p.Instructions != nil {
		d.Instructions = *p.Instructions
	}
}
