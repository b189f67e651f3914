// Package tz implementa domain.ZoneLocator.
//
//   - Finder: polígonos de fuso embutidos (github.com/ringsaturn/tzf), sem rede.
//   - Overpass: fronteiras do OpenStreetMap com tag timezone
//     (github.com/serjvanilla/go-overpass).
//   - Chain: compõe locators em ordem.
package tz
