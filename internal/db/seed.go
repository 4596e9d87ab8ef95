package db

import (
	"fmt"
	"math/rand"
	"slices"
	"time"

	"gorm.io/gorm"

	"github.com/cutmatch/cutmatch-api/internal/logger"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "password"

// SeedAdminEmail is the login of the seeded admin account.
const SeedAdminEmail = "admin@cutmatch.dev"

var seedHairstyles = []Hairstyle{
	{
		Name:               "Two Block",
		Description:        "Short sides with a longer, textured top.",
		ImageURLs:          StringList{"/uploads/seed/two-block.jpg"},
		Tags:               StringList{"short", "korean", "textured"},
		SuitableFaceShapes: StringList{"oval", "square"},
		Gender:             GenderMale,
	},
	{
		Name:               "Classic Bob",
		Description:        "Chin length cut with a blunt edge.",
		ImageURLs:          StringList{"/uploads/seed/bob.jpg"},
		OverlayImageURL:    "/uploads/seed/bob-overlay.png",
		Tags:               StringList{"medium", "classic"},
		SuitableFaceShapes: StringList{"oval", "heart"},
		Gender:             GenderFemale,
	},
	{
		Name:               "Long Layers",
		Description:        "Soft layers that frame the face.",
		ImageURLs:          StringList{"/uploads/seed/long-layers.jpg"},
		Tags:               StringList{"long", "layered"},
		SuitableFaceShapes: StringList{"round", "square", "heart"},
		Gender:             GenderFemale,
	},
	{
		Name:               "Buzz Cut",
		Description:        "Clipper cut, even length all over.",
		ImageURLs:          StringList{"/uploads/seed/buzz.jpg"},
		Tags:               StringList{"short", "low-maintenance"},
		SuitableFaceShapes: StringList{"oval"},
		Gender:             GenderUnisex,
	},
	{
		Name:               "Curtain Fringe",
		Description:        "Middle-parted fringe that falls to the cheekbones.",
		ImageURLs:          StringList{"/uploads/seed/curtain.jpg"},
		Tags:               StringList{"fringe", "medium", "korean"},
		SuitableFaceShapes: StringList{"round", "oval"},
		Gender:             GenderUnisex,
	},
}

var seedSalons = []Salon{
	{Name: "Siam Cut Studio", Address: "Siam Square Soi 3, Pathum Wan, Bangkok", Phone: "02-111-1111", Longitude: 100.5342, Latitude: 13.7455},
	{Name: "Sukhumvit Hair Lab", Address: "Sukhumvit 24, Khlong Toei, Bangkok", Phone: "02-222-2222", Longitude: 100.5677, Latitude: 13.7291},
	{Name: "Silom Barber Club", Address: "Silom Rd, Bang Rak, Bangkok", Phone: "02-333-3333", Longitude: 100.5298, Latitude: 13.7262},
	{Name: "Ari Salon", Address: "Phahonyothin 7, Phaya Thai, Bangkok", Phone: "02-444-4444", Longitude: 100.5445, Latitude: 13.7797},
	{Name: "Nimman Hair House", Address: "Nimmanhaemin Rd, Chiang Mai", Phone: "053-555-555", Longitude: 98.9676, Latitude: 18.7999},
}

// SeedTestData resets the database and populates it with demo content.
//
// Behavior:
//  1. Clears every table managed by Migrate.
//  2. Creates one admin and 10 users; every password is SeedPassword.
//  3. Each user follows ~3 others (both lists maintained).
//  4. Seeds the hairstyle catalogue, a few reviews with their aggregates,
//     posts with random likes, and salons in Bangkok and Chiang Mai.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if err := clearAll(db); err != nil {
		return err
	}
	logger.Info("cleared existing data")

	// --- Users ---
	admin := User{Username: "admin", Email: SeedAdminEmail, Password: SeedPassword, Role: RoleAdmin}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	users := make([]*User, 0, 10)
	for i := 1; i <= 10; i++ {
		u := &User{
			Username: fmt.Sprintf("user%d", i),
			Email:    fmt.Sprintf("user%d@example.com", i),
			Password: SeedPassword,
		}
		if err := db.Create(u).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		users = append(users, u)
	}
	logger.Info("seeded users", "count", len(users)+1)

	// --- Follows ---
	for i, u := range users {
		for j := 1; j <= 3; j++ {
			target := users[(i+j*r.Intn(3)+j)%len(users)]
			if target.ID == u.ID || slices.Contains(u.Following, target.ID) {
				continue
			}
			u.Following = append(u.Following, target.ID)
			target.Followers = append(target.Followers, u.ID)
		}
	}
	for _, u := range users {
		if err := db.Model(u).Select("following", "followers").Updates(u).Error; err != nil {
			return fmt.Errorf("failed to seed follows: %w", err)
		}
	}

	// --- Hairstyles and reviews ---
	hairstyles := make([]Hairstyle, len(seedHairstyles))
	copy(hairstyles, seedHairstyles)
	if err := db.Create(&hairstyles).Error; err != nil {
		return fmt.Errorf("failed to seed hairstyles: %w", err)
	}
	for i := range hairstyles {
		h := &hairstyles[i]
		var sum float64
		for _, u := range users[:r.Intn(len(users))] {
			review := Review{Rating: float64(r.Intn(5) + 1), Comment: "Looks great", UserID: u.ID, HairstyleID: h.ID}
			if err := db.Create(&review).Error; err != nil {
				return fmt.Errorf("failed to seed review: %w", err)
			}
			h.Reviews = append(h.Reviews, review.ID)
			sum += review.Rating
		}
		h.NumReviews = len(h.Reviews)
		if h.NumReviews > 0 {
			h.AverageRating = sum / float64(h.NumReviews)
		}
		if err := db.Model(h).Select("reviews", "num_reviews", "average_rating").Updates(h).Error; err != nil {
			return fmt.Errorf("failed to seed review aggregates: %w", err)
		}
	}

	// --- Posts ---
	for i, u := range users {
		linked := hairstyles[i%len(hairstyles)].ID
		post := Post{
			AuthorID:          u.ID,
			Text:              fmt.Sprintf("New cut from %s", u.Username),
			LinkedHairstyleID: &linked,
		}
		for _, liker := range users {
			// like probability 50%
			if liker.ID != u.ID && r.Intn(100) < 50 {
				post.Likes = append(post.Likes, liker.ID)
			}
		}
		if err := db.Create(&post).Error; err != nil {
			return fmt.Errorf("failed to seed post: %w", err)
		}
	}

	// --- Salons ---
	salons := make([]Salon, len(seedSalons))
	copy(salons, seedSalons)
	if err := db.Create(&salons).Error; err != nil {
		return fmt.Errorf("failed to seed salons: %w", err)
	}

	logger.Info("seed completed",
		"hairstyles", len(hairstyles), "salons", len(salons), "posts", len(users))
	return nil
}

// SeedMinimalTestData seeds a fixed, deterministic data set: an admin,
// two users where alice follows bob, one hairstyle, one post by bob and
// two salons.
func SeedMinimalTestData(db *gorm.DB) error {
	if err := clearAll(db); err != nil {
		return err
	}

	admin := User{ID: "u-admin", Username: "admin", Email: SeedAdminEmail, Password: SeedPassword, Role: RoleAdmin}
	alice := User{ID: "u-alice", Username: "alice", Email: "alice@example.com", Password: SeedPassword, Following: StringList{"u-bob"}}
	bob := User{ID: "u-bob", Username: "bob", Email: "bob@example.com", Password: SeedPassword, Followers: StringList{"u-alice"}}
	for _, u := range []*User{&admin, &alice, &bob} {
		if err := db.Create(u).Error; err != nil {
			return err
		}
	}

	h := seedHairstyles[0]
	h.ID = "h-two-block"
	if err := db.Create(&h).Error; err != nil {
		return err
	}

	post := Post{ID: "p-bob-1", AuthorID: bob.ID, Text: "Fresh two block", LinkedHairstyleID: &h.ID}
	if err := db.Create(&post).Error; err != nil {
		return err
	}

	salons := []Salon{seedSalons[0], seedSalons[4]}
	return db.Create(&salons).Error
}

func clearAll(db *gorm.DB) error {
	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(models[i]).Error; err != nil {
			return fmt.Errorf("failed to clear %T: %w", models[i], err)
		}
	}
	return nil
}
