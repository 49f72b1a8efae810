package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-todo/config"
	"github.com/oksasatya/go-ddd-todo/internal/infrastructure/store"
	"github.com/oksasatya/go-ddd-todo/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons. Optional services
// (GCS, Elasticsearch, RabbitMQ) stay nil when not configured.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	records     *store.Store
	redisClient *redis.Client
	gcsClient   *storage.Client

	jwtManager *helpers.JWTManager

	eventsPub *helpers.RabbitPublisher
	esClient  *elasticsearch.Client

	metricsReg *prometheus.Registry
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetStore(s *store.Store)      { records = s }
func GetStore() *store.Store       { return records }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetGCS(s *storage.Client)     { gcsClient = s }
func GetGCS() *storage.Client      { return gcsClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

func SetEventsPub(p *helpers.RabbitPublisher) { eventsPub = p }
func GetEventsPub() *helpers.RabbitPublisher  { return eventsPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }

func SetMetrics(r *prometheus.Registry) { metricsReg = r }
func GetMetrics() *prometheus.Registry  { return metricsReg }
