// Copyright 2026 The Nappo Authors
// SPDX-License-Identifier: Apache-2.0

// Package nuget is a minimal NuGet v3 feed client covering what nappo
// needs: resolving a feed's service index, querying its search service
// for package versions, and constructing flat-container download URLs
// for .nupkg packages.
//
// Only two service index resources are consulted, located by @type
// prefix: SearchQueryService/3.0 for search and PackageBaseAddress/3.0
// for package content. Feeds without them are rejected with a
// descriptive error.
package nuget
