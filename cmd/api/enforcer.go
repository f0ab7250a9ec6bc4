package main

import (
	"fmt"
	"log/slog"

	gormadapter "github.com/casbin/gorm-adapter/v3"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/CameronXie/canteen-admin/internal/config"
	"github.com/CameronXie/canteen-admin/internal/decisionmaker"
	"github.com/CameronXie/canteen-admin/internal/enforcer"
	"github.com/CameronXie/canteen-admin/internal/infoprovider"

	pdpcasbin "github.com/CameronXie/canteen-admin/internal/decisionmaker/casbin"
	pdpopa "github.com/CameronXie/canteen-admin/internal/decisionmaker/opa"
	prp "github.com/CameronXie/canteen-admin/internal/policyretriever/opa"
)

// adminPolicy is seeded into the casbin policy store so a fresh database grants admins the whole API.
var adminPolicy = []string{"admin", "/api/v1/*", "*"}

// newEnforcer initializes the enforcer with the decision maker selected by the configuration.
// Roles are always resolved from the user store.
func newEnforcer(cfg *config.Config, roles infoprovider.InfoProvider, logger *slog.Logger) (enforcer.Enforcer, error) {
	var (
		decisionMaker decisionmaker.DecisionMaker
		err           error
	)

	switch cfg.AuthzEngine {
	case config.EngineCasbin:
		decisionMaker, err = newCasbinDecisionMaker(cfg, logger)
	default:
		decisionMaker = newOPADecisionMaker(cfg, logger)
	}
	if err != nil {
		return nil, err
	}

	return enforcer.NewEnforcer(roles, decisionMaker), nil
}

// newCasbinDecisionMaker stores policies through a gorm adapter on PostgreSQL or MySQL.
func newCasbinDecisionMaker(cfg *config.Config, logger *slog.Logger) (decisionmaker.DecisionMaker, error) {
	logger.Info("initializing enforcer with Casbin", "policy_store", cfg.CasbinDBDriver)

	dialector := gormpostgres.Open(cfg.PostgresURL())
	if cfg.CasbinDBDriver == config.DriverMySQL {
		dialector = gormmysql.Open(cfg.MySQLDSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		return nil, fmt.Errorf("open casbin policy store: %w", err)
	}

	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("create casbin adapter: %w", err)
	}

	return pdpcasbin.NewDecisionMaker(pdpcasbin.Model, adapter, adminPolicy)
}

// newOPADecisionMaker evaluates the embedded rego policy, or the policy file when one is configured.
func newOPADecisionMaker(cfg *config.Config, logger *slog.Logger) decisionmaker.DecisionMaker {
	policyRetriever := prp.NewEmbeddedPolicyRetriever()
	if cfg.OPAPolicyFile != "" {
		policyRetriever = prp.NewFilePolicyRetriever(cfg.OPAPolicyFile)
	}

	logger.Info("initializing enforcer with OPA", "policy_file", cfg.OPAPolicyFile)
	return pdpopa.NewDecisionMaker(policyRetriever, prp.Query)
}
