// Package logger builds *slog.Logger instances for the billing service.
//
// New assembles a text or JSON handler from functional options and wraps it
// in a decorator that pulls request-scoped values (such as the request id)
// out of context.Context on every record.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.AppEnv, cfg.AppName),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.WarnContext(ctx, "no subscription for preapproval plan",
//		logger.PreapprovalPlanID(planID),
//		logger.PreapprovalID(preapprovalID),
//	)
//
// Attribute helpers in attr.go keep key names consistent between packages so
// log queries can correlate a checkout with the webhook that activated it.
package logger
