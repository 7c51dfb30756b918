package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Smoke client for the POS HTTP surface: creates a product, builds a cart,
// checks out and reads the sales pages, all through one cookie session.
func main() {
	baseURL := flag.String("base", "http://localhost:8080", "server base url")
	name := flag.String("name", fmt.Sprintf("Smoke-%d", time.Now().Unix()), "product name to create")
	price := flag.String("price", "3.50", "product price")
	stock := flag.String("stock", "10", "product stock")
	quantity := flag.String("quantity", "2", "quantity to add to cart")
	flag.Parse()

	jar, err := cookiejar.New(nil)
	if err != nil {
		panic(err)
	}
	client := &http.Client{Timeout: 5 * time.Second, Jar: jar}

	steps := []struct {
		name string
		run  func() error
	}{
		{"ping", func() error { return doGET(client, *baseURL+"/ping") }},
		{"add product", func() error {
			return doForm(client, *baseURL+"/add_product", url.Values{
				"name":  {*name},
				"price": {*price},
				"stock": {*stock},
			})
		}},
		{"pos page", func() error { return doGET(client, *baseURL+"/pos") }},
		{"add to cart", func() error {
			id, err := findProductID(client, *baseURL, *name)
			if err != nil {
				return err
			}
			return doForm(client, *baseURL+"/add_to_cart", url.Values{
				"product_id": {id},
				"quantity":   {*quantity},
			})
		}},
		{"checkout", func() error { return doForm(client, *baseURL+"/checkout", nil) }},
		{"sales page", func() error { return doGET(client, *baseURL+"/sales") }},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			fmt.Printf("FAIL %s: %v\n", step.name, err)
			return
		}
		fmt.Printf("ok   %s\n", step.name)
	}
	fmt.Println("smoke test passed")
}

// findProductID scrapes the edit link for the named product off /products.
func findProductID(client *http.Client, baseURL, name string) (string, error) {
	resp, err := client.Get(baseURL + "/products")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	idx := strings.Index(string(body), ">"+name+"<")
	if idx < 0 {
		return "", fmt.Errorf("product %q not listed", name)
	}
	rest := string(body)[idx:]
	marker := "/edit_product/"
	j := strings.Index(rest, marker)
	if j < 0 {
		return "", fmt.Errorf("edit link for %q not found", name)
	}
	rest = rest[j+len(marker):]
	end := strings.IndexAny(rest, `"'`)
	if end < 0 {
		return "", fmt.Errorf("malformed edit link for %q", name)
	}
	return rest[:end], nil
}

func doGET(client *http.Client, url string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}

// doForm posts form values; redirects are followed by the client, so a final
// 2xx means the flash-and-redirect flow completed.
func doForm(client *http.Client, target string, values url.Values) error {
	resp, err := client.PostForm(target, values)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
