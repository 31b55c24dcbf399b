package astroreport

import (
	"time"

	"github.com/yanqian/ai-astrology/internal/domain/chart"
)

// Request captures the payload accepted by the report endpoint.
type Request struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
}

// Report is one generated reading. Data and Location are serialized to clients;
// Chart keeps the raw computation for in-process callers.
type Report struct {
	Data     ReportData        `json:"data"`
	Location string            `json:"location"`
	Chart    chart.ChartResult `json:"-"`
}

// ReportData is the client facing chart and narrative.
type ReportData struct {
	ReportID string `json:"reportId,omitempty"`

	SunSign     string `json:"sunSign"`
	MoonSign    string `json:"moonSign"`
	RisingSign  string `json:"risingSign"`
	MercurySign string `json:"mercurySign"`
	VenusSign   string `json:"venusSign"`
	MarsSign    string `json:"marsSign"`

	Houses         map[string]HouseView `json:"houses"`
	PlanetHouses   map[string]int       `json:"planetHouses"`
	PlanetDegrees  map[string]float64   `json:"planetDegrees"`
	PlanetMeanings map[string]string    `json:"planetMeanings"`

	Analysis            string               `json:"analysis"`
	CategorizedAnalysis *CategorizedAnalysis `json:"categorizedAnalysis,omitempty"`
	HouseAnalysis       string               `json:"houseAnalysis,omitempty"`

	JulianDay       float64 `json:"julianDay"`
	CalculationMode string  `json:"calculationMode"`
}

// HouseView is one entry of the houses table.
type HouseView struct {
	Sign     string   `json:"sign"`
	Degree   float64  `json:"degree"`
	Name     string   `json:"name"`
	Meaning  string   `json:"meaning"`
	Keywords []string `json:"keywords"`
}

// CategorizedAnalysis holds the four themed sections in fixed order.
type CategorizedAnalysis struct {
	Personality   string `json:"personality"`
	Communication string `json:"communication"`
	Love          string `json:"love"`
	Career        string `json:"career"`
}

func (c *CategorizedAnalysis) set(category Category, text string) {
	switch category {
	case CategoryPersonality:
		c.Personality = text
	case CategoryCommunication:
		c.Communication = text
	case CategoryLove:
		c.Love = text
	case CategoryCareer:
		c.Career = text
	}
}

// Category names a themed analysis section.
type Category string

const (
	CategoryPersonality   Category = "personality"
	CategoryCommunication Category = "communication"
	CategoryLove          Category = "love"
	CategoryCareer        Category = "career"
)

// Categories is the fixed generation and presentation order.
var Categories = []Category{CategoryPersonality, CategoryCommunication, CategoryLove, CategoryCareer}

// Config wires runtime knobs for the report pipeline.
type Config struct {
	RequestTimeout   time.Duration
	CategoryInterval time.Duration
}

// NoPacing turns the spacing between categorized calls off.
const NoPacing time.Duration = -1

const (
	defaultRequestTimeout   = 30 * time.Second
	defaultCategoryInterval = time.Second
)

func (c Config) withDefaults() Config {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	// Negative intervals disable pacing.
	if c.CategoryInterval == 0 {
		c.CategoryInterval = defaultCategoryInterval
	}
	return c
}
