// seed carga el catálogo de productos (códigos válidos para movimientos) desde un XML
// exportado por el sistema de catálogo. Acepta archivos en UTF-8 o ISO-8859-1.
//
// Uso: go run ./cmd/seed [ruta/productos.xml]
// Por defecto busca productos.xml en el directorio actual y escribe en el almacén de DB_DRIVER.
//
// Formato:
//
//	<catalogo>
//	  <producto cod="ZR001" nombre="Zapato rojo" activo="true"/>
//	</catalogo>
package main

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	rules "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/sqlite"
	"github.com/jhoicas/inventario-ledger/pkg/config"
)

type catalogo struct {
	Productos []producto `xml:"producto"`
}

type producto struct {
	Cod    string `xml:"cod,attr"`
	Nombre string `xml:"nombre,attr"`
	Activo string `xml:"activo,attr"`
}

func main() {
	xmlPath := "productos.xml"
	if len(os.Args) > 1 {
		xmlPath = os.Args[1]
	}
	f, err := os.Open(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir XML: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	products, skipped, err := parseCatalog(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar XML: %v\n", err)
		os.Exit(1)
	}
	for _, s := range skipped {
		fmt.Fprintf(os.Stderr, "Omitido: %s\n", s)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	repo, closeFn, err := openProducts(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir almacenamiento: %v\n", err)
		os.Exit(1)
	}
	defer closeFn()

	for _, p := range products {
		if err := repo.Upsert(ctx, p); err != nil {
			fmt.Fprintf(os.Stderr, "Guardar %s: %v\n", p.Code, err)
			os.Exit(1)
		}
	}
	fmt.Printf("Cargados %d productos (%d omitidos) en %s\n", len(products), len(skipped), cfg.DB.Driver)
}

// parseCatalog decodifica el XML, normaliza los códigos y descarta los inválidos.
// Un código repetido conserva la última aparición.
func parseCatalog(r io.Reader) ([]*entity.Product, []string, error) {
	var c catalogo
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&c); err != nil {
		return nil, nil, err
	}

	var skipped []string
	index := make(map[string]int)
	var out []*entity.Product
	for _, p := range c.Productos {
		code := rules.NormalizeProductCode(p.Cod)
		if e := rules.ValidateProductCode(code); e != nil {
			skipped = append(skipped, fmt.Sprintf("%q: %s", p.Cod, e.Reason))
			continue
		}
		active := true
		if s := strings.TrimSpace(p.Activo); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				skipped = append(skipped, fmt.Sprintf("%q: activo %q no es booleano", p.Cod, p.Activo))
				continue
			}
			active = b
		}
		prod := &entity.Product{Code: code, Name: strings.TrimSpace(p.Nombre), IsActive: active}
		if i, ok := index[code]; ok {
			out[i] = prod
			continue
		}
		index[code] = len(out)
		out = append(out, prod)
	}
	return out, skipped, nil
}

func openProducts(ctx context.Context, cfg *config.Config) (repository.ProductRepository, func(), error) {
	if cfg.DB.Driver == config.DriverSQLite {
		store, err := sqlite.Open(ctx, cfg.DB.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewProductRepository(store.DB()), func() { _ = store.Close() }, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}
	return postgres.NewProductRepository(pool), pool.Close, nil
}
