package version

// Version is overridden at build time with -ldflags "-X github.com/CameronXie/canteen-admin/internal/version.Version=<tag>".
var Version = "dev"
