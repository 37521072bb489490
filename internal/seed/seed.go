// Package seed creates the starter projects for a fresh install.
package seed

import (
	"context"
	"fmt"

	"github.com/retirewiselabs/retirewised/internal/model"
	"github.com/retirewiselabs/retirewised/internal/unified"
)

func ptr(f float64) *float64 { return &f }

// starterProjects is the initial dataset for new users.
var starterProjects = []model.Project{
	{
		Name:        "Wanderwise",
		Type:        "building",
		Description: "AI-powered walking tour generator for travelers",
		Goals:       []string{"Complete MVP", "Launch to family", "Get 50 routes generated"},
		Motivation:  "Solve our own travel planning problem, learn AI integration",
		Tags:        []string{"tech", "travel", "AI", "product"},
		Color:       "#3B82F6",
		Icon:        "🗺️",
		Status:      model.StatusActive,
		TargetHours: ptr(200),
	},
	{
		Name:        "RetireWise",
		Type:        "building",
		Description: "Intelligent retirement portfolio advisor with AI",
		Goals:       []string{"Build MVP", "Implement AI advisor", "Track portfolio effectively"},
		Motivation:  "Manage my own retirement experiments, learn agentic AI",
		Tags:        []string{"tech", "retirement", "AI", "personal"},
		Color:       "#8B5CF6",
		Icon:        "🧠",
		Status:      model.StatusActive,
		TargetHours: ptr(150),
	},
	{
		Name:        "AI Learning",
		Type:        "learning",
		Description: "Learning about AI, prompt engineering, RAG, and agentic systems",
		Goals:       []string{"Complete prompt engineering courses", "Build RAG system", "Understand agentic AI"},
		Motivation:  "Stay current with AI developments, apply to projects",
		Tags:        []string{"learning", "AI", "skills"},
		Color:       "#10B981",
		Icon:        "📚",
		Status:      model.StatusActive,
	},
	{
		Name:        "Consulting Exploration",
		Type:        "consulting",
		Description: "Exploring consulting opportunities in operations/IT",
		Goals:       []string{"Decide if consulting is right path", "Take one engagement", "Evaluate fit"},
		Motivation:  "Leverage expertise, uncertain if this is the right direction",
		Tags:        []string{"consulting", "decision", "business"},
		Color:       "#F59E0B",
		Icon:        "💼",
		Status:      model.StatusPlanning,
		TargetHours: ptr(50),
	},
}

// Run creates the starter projects through the facade. It refuses to seed a
// dataset that already has projects.
func Run(ctx context.Context, f *unified.Facade) (int, error) {
	existing, err := f.AllProjects(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, fmt.Errorf("refusing to seed: %d projects already exist", len(existing))
	}

	for _, p := range starterProjects {
		if _, err := f.CreateProject(ctx, p); err != nil {
			return 0, fmt.Errorf("seeding project %q: %w", p.Name, err)
		}
	}
	return len(starterProjects), nil
}
