package e2e

import (
	"github.com/cucumber/godog"

	"creditline/e2e/steps/common"
	"creditline/e2e/steps/lending"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (background, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register lending steps (customers, eligibility, loans)
	lending.RegisterSteps(ctx, tc)
}
