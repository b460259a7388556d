package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"
)

// Seeds demo data through the HTTP API. State lives in the server
// process, so seeding only makes sense against a running instance.
func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	logger.Info().Msg("seed starting")

	baseURL := getEnv("SEED_API_BASE_URL", "http://localhost:8080")
	patientCount := getInt("SEED_PATIENTS", 20)
	bookingCount := getInt("SEED_BOOKINGS", 40)

	gofakeit.Seed(time.Now().UnixNano())

	client := &http.Client{Timeout: 10 * time.Second}

	doctors, err := fetchDoctors(client, baseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("fetch doctors")
	}
	logger.Info().Strs("doctors", doctors).Msg("roster loaded")

	phones := seedPatients(client, baseURL, patientCount, logger)
	seedBookings(client, baseURL, doctors, phones, bookingCount, logger)

	logger.Info().Msg("seed complete")
}

func fetchDoctors(client *http.Client, baseURL string) ([]string, error) {
	resp, err := client.Get(baseURL + "/api/doctors")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var doctors []string
	if err := json.NewDecoder(resp.Body).Decode(&doctors); err != nil {
		return nil, err
	}
	if len(doctors) == 0 {
		return nil, fmt.Errorf("empty roster")
	}
	return doctors, nil
}

func seedPatients(client *http.Client, baseURL string, count int, logger zerolog.Logger) []string {
	logger.Info().Int("count", count).Msg("seeding patients")

	var phones []string
	for i := 0; i < count; i++ {
		phone := gofakeit.Phone()
		body, _ := json.Marshal(map[string]string{
			"name":    gofakeit.Name(),
			"phone":   phone,
			"email":   gofakeit.Email(),
			"address": gofakeit.Address().Address,
		})

		resp, err := client.Post(baseURL+"/api/patients", "application/json", bytes.NewReader(body))
		if err != nil {
			logger.Error().Err(err).Msg("create patient")
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusCreated {
			phones = append(phones, phone)
		}
	}

	logger.Info().Int("created", len(phones)).Msg("patients seeded")
	return phones
}

func seedBookings(client *http.Client, baseURL string, doctors, phones []string, count int, logger zerolog.Logger) {
	logger.Info().Int("count", count).Msg("seeding bookings")

	booked := 0
	for i := 0; i < count; i++ {
		// Random weekday slot over the next two weeks.
		day := time.Now().AddDate(0, 0, gofakeit.Number(0, 13))
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), gofakeit.Number(8, 15), 0, 0, 0, day.Location())

		name := gofakeit.Name()
		phone := gofakeit.Phone()
		if len(phones) > 0 && gofakeit.Bool() {
			phone = phones[gofakeit.Number(0, len(phones)-1)]
		}

		body, _ := json.Marshal(map[string]string{
			"doctor":        doctors[gofakeit.Number(0, len(doctors)-1)],
			"start_time":    start.Format(time.RFC3339),
			"patient_name":  name,
			"patient_phone": phone,
			"notes":         gofakeit.Sentence(6),
		})

		resp, err := client.Post(baseURL+"/api/appointments", "application/json", bytes.NewReader(body))
		if err != nil {
			logger.Error().Err(err).Msg("book appointment")
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusCreated {
			booked++
		}
	}

	logger.Info().Int("booked", booked).Msg("bookings seeded")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
