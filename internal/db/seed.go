package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedTestData resets the database and populates it with demo users,
// reactions and the matches derived from the mutual ones.
//
// Behavior:
//  1. Clears existing rows in all tables.
//  2. Creates 20 users (10 male, 10 female) with normalized phones and
//     bcrypt-hashed passwords.
//  3. Generates ~200 reactions with ~70% positive, and every 3rd pair gets
//     a guaranteed reciprocal like so matches exist out of the box.
//  4. Inserts the canonical match row for every mutually positive pair.
//  5. Adds a handful of roulette options.
//
// Compatible with both MySQL and SQLite (AUTO_INCREMENT reset skipped for SQLite).
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"matches", "reactions", "roulette_options", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE matches AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE roulette_options AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name IN ('users', 'matches', 'roulette_options')")
	}

	log.Println("Cleared existing data")

	// --- Seed Users (10 male, 10 female) ---
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	for i := 1; i <= 20; i++ {
		gender := "male"
		if i > 10 {
			gender = "female"
		}

		birth := time.Date(1990+r.Intn(15), time.Month(1+r.Intn(12)), 1+r.Intn(28), 0, 0, 0, 0, time.UTC)

		user := User{
			State:        true,
			Name:         fmt.Sprintf("Demo User %d", i),
			Birthdate:    &birth,
			Description:  fmt.Sprintf("Seeded profile #%d", i),
			Phone:        fmt.Sprintf("30011122%02d", i),
			PasswordHash: string(hash),
			Type:         TypeUser,
			Gender:       gender,
			Photos:       PhotoList{},
		}

		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}
	log.Println("Seeded 20 users.")

	// --- Seed Reactions (~200) ---
	counter := 0
	for senderID := uint64(1); senderID <= 20; senderID++ {
		for j := 0; j < 12; j++ { // each user reacts to ~12 others
			receiverID := uint64(r.Intn(20) + 1)
			if senderID == receiverID {
				continue
			}

			var sender, receiver User
			if err := db.First(&sender, senderID).Error; err != nil {
				continue
			}
			if err := db.First(&receiver, receiverID).Error; err != nil {
				continue
			}
			if sender.Gender == receiver.Gender {
				continue
			}

			reactionType := ReactionDislike
			if r.Intn(100) < 70 {
				reactionType = ReactionLike
				if r.Intn(100) < 20 {
					reactionType = ReactionLove
				}
			}

			// guarantee mutual likes every 3rd pair
			if counter%3 == 0 {
				reactionType = ReactionLike
				recip := Reaction{
					SenderID:   receiverID,
					ReceiverID: senderID,
					Type:       ReactionLike,
				}
				db.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "sender_id"}, {Name: "receiver_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
				}).Create(&recip)
			}

			reaction := Reaction{
				SenderID:   senderID,
				ReceiverID: receiverID,
				Type:       reactionType,
			}
			if err := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "sender_id"}, {Name: "receiver_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
			}).Create(&reaction).Error; err != nil {
				return fmt.Errorf("failed to seed reaction: %w", err)
			}
			counter++
		}
	}
	log.Printf("Seeded %d reactions.", counter)

	// --- Derive matches from mutual positive reactions ---
	var reactions []Reaction
	if err := db.Where("type IN ?", []string{ReactionLike, ReactionLove}).Find(&reactions).Error; err != nil {
		return fmt.Errorf("failed to load reactions: %w", err)
	}

	positive := make(map[[2]uint64]bool, len(reactions))
	for _, re := range reactions {
		positive[[2]uint64{re.SenderID, re.ReceiverID}] = true
	}

	matched := 0
	for edge := range positive {
		a, b := edge[0], edge[1]
		if a >= b || !positive[[2]uint64{b, a}] {
			continue
		}
		m := Match{User1ID: a, User2ID: b, State: true}
		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user1_id"}, {Name: "user2_id"}},
			DoNothing: true,
		}).Create(&m)
		if res.Error != nil {
			return fmt.Errorf("failed to seed match: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			matched++
		}
	}
	log.Printf("Seeded %d matches.", matched)

	// --- Roulette options ---
	options := []RouletteOption{
		{Name: "Truth", Description: "Answer a question honestly", State: true},
		{Name: "Dare", Description: "Complete a small challenge", State: true},
		{Name: "Free drink", Description: "The other side buys the next round", State: true},
		{Name: "Skip turn", Description: "Nothing happens this round", State: false},
	}
	if err := db.Create(&options).Error; err != nil {
		return fmt.Errorf("failed to seed roulette options: %w", err)
	}
	log.Printf("Seeded %d roulette options.", len(options))

	return nil
}
