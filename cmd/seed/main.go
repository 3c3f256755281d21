package main

import (
	"context"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"neuroviz-server/internal/entity"
	"neuroviz-server/internal/repository/implementation"
	"neuroviz-server/pkg/database"
)

// Seeds a handful of presets so a fresh install has something to build an
// experiment from.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	presets := []entity.Preset{
		{
			Name: "Matte baseline",
			Parameters: entity.ParameterValues{
				entity.ParameterTransparency:     0.1,
				entity.ParameterGlow:             0.0,
				entity.ParameterSmoothness:       0.4,
				entity.ParameterEmission:         0.0,
				entity.ParameterLightIntensity:   0.6,
				entity.ParameterLightTemperature: 5500,
			},
		},
		{
			Name: "Glassy",
			Parameters: entity.ParameterValues{
				entity.ParameterTransparency:     0.8,
				entity.ParameterGlow:             0.2,
				entity.ParameterSmoothness:       0.95,
				entity.ParameterEmission:         0.1,
				entity.ParameterLightIntensity:   0.7,
				entity.ParameterLightTemperature: 6500,
			},
		},
		{
			Name: "Warm emissive",
			Parameters: entity.ParameterValues{
				entity.ParameterTransparency:     0.3,
				entity.ParameterGlow:             0.6,
				entity.ParameterSmoothness:       0.5,
				entity.ParameterEmission:         0.7,
				entity.ParameterLightIntensity:   0.4,
				entity.ParameterLightTemperature: 3200,
			},
		},
	}

	repo := implementation.NewPresetRepository(db)
	ctx := context.Background()

	for i := range presets {
		key := uuid.New().String()
		if err := repo.Save(ctx, key, &presets[i]); err != nil {
			log.Fatalf("Error: failed to seed preset %q: %v", presets[i].Name, err)
		}
		log.Printf("Seeded preset %q (%s)", presets[i].Name, key)
	}

	log.Println("Seeding complete.")
}
