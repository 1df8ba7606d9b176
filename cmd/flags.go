package cmd

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func logLevelFlag(v *viper.Viper) string {
	return v.GetString("log.level")
}

func addLogLevelFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-level", "info", "log level")
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindEnv("log.level", "LOG_LEVEL")
}

func logFormatFlag(v *viper.Viper) string {
	return v.GetString("log.format")
}

func addLogFormatFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-format", "json", "log format")
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = v.BindEnv("log.format", "LOG_FORMAT")
}

func addressFlag(v *viper.Viper) string {
	return v.GetString("address")
}

func addAddressFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("address", ":8080", "Address to bind to (host:port)")
	_ = v.BindPFlag("address", flags.Lookup("address"))
	_ = v.BindEnv("address", "DOCSITE_ADDRESS")
}

// ~ Site

func siteNameFlag(v *viper.Viper) string {
	return v.GetString("site.name")
}

func addSiteNameFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("site-name", "", "Name of the site, letters and underscores only")
	_ = v.BindPFlag("site.name", flags.Lookup("site-name"))
	_ = v.BindEnv("site.name", "SITE_NAME")
}

func siteHumanNameFlag(v *viper.Viper) string {
	return v.GetString("site.human_name")
}

func addSiteHumanNameFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("site-human-name", "", "Display name of the site")
	_ = v.BindPFlag("site.human_name", flags.Lookup("site-human-name"))
	_ = v.BindEnv("site.human_name", "SITE_HUMAN_NAME")
}

func siteHumanShortNameFlag(v *viper.Viper) string {
	return v.GetString("site.human_short_name")
}

func addSiteHumanShortNameFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("site-human-short-name", "", "Short display name, defaults to the display name")
	_ = v.BindPFlag("site.human_short_name", flags.Lookup("site-human-short-name"))
	_ = v.BindEnv("site.human_short_name", "SITE_HUMAN_SHORT_NAME")
}

func siteURLPrefixFlag(v *viper.Viper) string {
	return v.GetString("site.url_prefix")
}

func addSiteURLPrefixFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("site-url-prefix", "", "Path the site is served at")
	_ = v.BindPFlag("site.url_prefix", flags.Lookup("site-url-prefix"))
	_ = v.BindEnv("site.url_prefix", "SITE_URL_PREFIX")
}

func siteSourcePathFlag(v *viper.Viper) string {
	return v.GetString("site.source_path")
}

func addSiteSourcePathFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("site-source-path", "", "Directory containing the markdown sources")
	_ = v.BindPFlag("site.source_path", flags.Lookup("site-source-path"))
	_ = v.BindEnv("site.source_path", "SITE_SOURCE_PATH")
}

func siteStaticURLFlag(v *viper.Viper) string {
	return v.GetString("site.static_url")
}

func addSiteStaticURLFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("site-static-url", "", "Base URL of static files if they are not served by the site")
	_ = v.BindPFlag("site.static_url", flags.Lookup("site-static-url"))
	_ = v.BindEnv("site.static_url", "SITE_STATIC_URL")
}

func siteSearchFlag(v *viper.Viper) bool {
	return v.GetBool("site.search")
}

func addSiteSearchFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("site-search", true, "Build and serve a full text search index")
	_ = v.BindPFlag("site.search", flags.Lookup("site-search"))
	_ = v.BindEnv("site.search", "SITE_SEARCH")
}

func indexDirFlag(v *viper.Viper) string {
	return v.GetString("index.dir")
}

func addIndexDirFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("index-dir", "/var/lib/docsite/index", "Location of the search index")
	_ = v.BindPFlag("index.dir", flags.Lookup("index-dir"))
	_ = v.BindEnv("index.dir", "DOCSITE_INDEX_DIR")
}

func staticBucketFlag(v *viper.Viper) string {
	return v.GetString("static.bucket")
}

func addStaticBucketFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("static-bucket", "", "Blob bucket URL to additionally upload static files to (gs://, s3://, azblob://)")
	_ = v.BindPFlag("static.bucket", flags.Lookup("static-bucket"))
	_ = v.BindEnv("static.bucket", "DOCSITE_STATIC_BUCKET")
}

// ~ Storage

func storageTypeFlag(v *viper.Viper) string {
	return v.GetString("storage.type")
}

func addStorageTypeFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-type", "filesystem", "Storage backend: filesystem or blob")
	_ = v.BindPFlag("storage.type", flags.Lookup("storage-type"))
	_ = v.BindEnv("storage.type", "DOCSITE_STORAGE_TYPE")
}

func storageDirFlag(v *viper.Viper) string {
	return v.GetString("storage.dir")
}

func addStorageDirFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-dir", "/var/lib/docsite", "Directory used by the filesystem storage")
	_ = v.BindPFlag("storage.dir", flags.Lookup("storage-dir"))
	_ = v.BindEnv("storage.dir", "DOCSITE_STORAGE_DIR")
}

func storageBlobBucketFlag(v *viper.Viper) string {
	return v.GetString("storage.blob.bucket")
}

func addStorageBlobBucketFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-blob-bucket", "", "Blob bucket URL (gs://, s3://, azblob://)")
	_ = v.BindPFlag("storage.blob.bucket", flags.Lookup("storage-blob-bucket"))
	_ = v.BindEnv("storage.blob.bucket", "DOCSITE_STORAGE_BLOB_BUCKET")
}

func storageBlobPrefixFlag(v *viper.Viper) string {
	return v.GetString("storage.blob.prefix")
}

func addStorageBlobPrefixFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-blob-prefix", "", "Key prefix inside the blob bucket")
	_ = v.BindPFlag("storage.blob.prefix", flags.Lookup("storage-blob-prefix"))
	_ = v.BindEnv("storage.blob.prefix", "DOCSITE_STORAGE_BLOB_PREFIX")
}

// ~ Sitemap

func historyLimitFlag(v *viper.Viper) int {
	return v.GetInt("history.limit")
}

func addHistoryLimitFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("history-limit", 2, "Number of sitemap history records to keep")
	_ = v.BindPFlag("history.limit", flags.Lookup("history-limit"))
	_ = v.BindEnv("history.limit", "DOCSITE_HISTORY_LIMIT")
}

func workDirFlag(v *viper.Viper) string {
	return v.GetString("work_dir")
}

func addWorkDirFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("work-dir", "", "Directory to clone sites into, a temporary directory by default")
	_ = v.BindPFlag("work_dir", flags.Lookup("work-dir"))
	_ = v.BindEnv("work_dir", "DOCSITE_WORK_DIR")
}

func outputFlag(v *viper.Viper) string {
	return v.GetString("output")
}

func addOutputFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("output", "", "Additionally write the sitemap document to this file")
	_ = v.BindPFlag("output", flags.Lookup("output"))
}

func sitemapURLFlag(v *viper.Viper) string {
	return v.GetString("sitemap.url")
}

func addSitemapURLFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("sitemap-url", "", "Remote sitemap document to fetch, history only when empty")
	_ = v.BindPFlag("sitemap.url", flags.Lookup("sitemap-url"))
	_ = v.BindEnv("sitemap.url", "DOCSITE_SITEMAP_URL")
}

func pollIntervalFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("poll.interval")
}

func addPollIntervalFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("poll-interval", 0, "Reload the sitemap periodically, disabled when zero")
	_ = v.BindPFlag("poll.interval", flags.Lookup("poll-interval"))
	_ = v.BindEnv("poll.interval", "DOCSITE_POLL_INTERVAL")
}

func requestTimeoutFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("request.timeout")
}

func addRequestTimeoutFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("request-timeout", 30*time.Second, "Timeout for fetching the remote sitemap")
	_ = v.BindPFlag("request.timeout", flags.Lookup("request-timeout"))
	_ = v.BindEnv("request.timeout", "DOCSITE_REQUEST_TIMEOUT")
}

// ~ Server

func gracefulPeriodFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("graceful_period")
}

func addGracefulPeriodFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("graceful-period", 0, "Graceful period before shutting down")
	_ = v.BindPFlag("graceful_period", flags.Lookup("graceful-period"))
	_ = v.BindEnv("graceful_period", "DOCSITE_GRACEFUL_PERIOD")
}

func gzipLevelFlag(v *viper.Viper) int {
	return v.GetInt("gzip.level")
}

func addGzipLevelFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("gzip-level", 6, "Gzip compression level of responses")
	_ = v.BindPFlag("gzip.level", flags.Lookup("gzip-level"))
	_ = v.BindEnv("gzip.level", "DOCSITE_GZIP_LEVEL")
}

func serviceHealthzEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.healthz.enabled")
}

func addServiceHealthzEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-healthz-enabled", false, "Enable healthz service")
	_ = v.BindPFlag("service.healthz.enabled", flags.Lookup("service-healthz-enabled"))
}

func servicePrometheusEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.prometheus.enabled")
}

func addServicePrometheusEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-prometheus-enabled", false, "Enable prometheus service")
	_ = v.BindPFlag("service.prometheus.enabled", flags.Lookup("service-prometheus-enabled"))
}

func servicePProfEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.pprof.enabled")
}

func addServicePProfEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-pprof-enabled", false, "Enable pprof service")
	_ = v.BindPFlag("service.pprof.enabled", flags.Lookup("service-pprof-enabled"))
}

func otelEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("otel.enabled")
}

func addOtelEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("otel-enabled", false, "Enable otel service")
	_ = v.BindPFlag("otel.enabled", flags.Lookup("otel-enabled"))
	_ = v.BindEnv("otel.enabled", "OTEL_ENABLED")
}

func addSiteFlags(flags *pflag.FlagSet, v *viper.Viper) {
	addSiteNameFlag(flags, v)
	addSiteHumanNameFlag(flags, v)
	addSiteHumanShortNameFlag(flags, v)
	addSiteURLPrefixFlag(flags, v)
	addSiteSourcePathFlag(flags, v)
	addSiteStaticURLFlag(flags, v)
	addSiteSearchFlag(flags, v)
	addIndexDirFlag(flags, v)
}

func addStorageFlags(flags *pflag.FlagSet, v *viper.Viper) {
	addStorageTypeFlag(flags, v)
	addStorageDirFlag(flags, v)
	addStorageBlobBucketFlag(flags, v)
	addStorageBlobPrefixFlag(flags, v)
}

func addServerFlags(flags *pflag.FlagSet, v *viper.Viper) {
	addAddressFlag(flags, v)
	addGracefulPeriodFlag(flags, v)
	addGzipLevelFlag(flags, v)
	addOtelEnabledFlag(flags, v)
	addServiceHealthzEnabledFlag(flags, v)
	addServicePrometheusEnabledFlag(flags, v)
	addServicePProfEnabledFlag(flags, v)
}
