package arname

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/everFinance/arname/common"
	"github.com/everFinance/arname/schema"
	"github.com/gin-gonic/gin"
)

func (a *Arname) runAPI(port string) {
	if err := a.engine.Run(port); err != nil {
		panic(err)
	}
}

// Handler serves the http api.
func (a *Arname) Handler() http.Handler {
	return a.engine
}

func (a *Arname) setupRoutes() error {
	r := a.engine
	r.Use(common.CORSMiddleware(), common.RequestIdMiddleware())

	txHandlers := []gin.HandlerFunc{a.submitTx}
	if a.cfg.RateLimit != "" {
		limiter, err := common.LimiterMiddleware(a.cfg.RateLimit, nil)
		if err != nil {
			return err
		}
		txHandlers = append([]gin.HandlerFunc{limiter}, txHandlers...)
	}

	v1 := r.Group("/")
	{
		v1.POST("/tx", txHandlers...)
		v1.POST("/query/:contract", a.query)
		v1.GET("/info", a.getInfo)
		v1.GET("/account/:address", a.getAccount)
		v1.GET("/balance/:address", a.getBalance)
		v1.GET("/txs/:sender", a.getTxs)
		v1.GET("/tx/:hash", a.getTx)

		v1.GET("/registrar/config", a.registrarQuery(func(c *gin.Context) (interface{}, error) {
			return schema.RegistrarQueryMsg{Config: &schema.Empty{}}, nil
		}))
		v1.GET("/registrar/prices", a.registrarQuery(func(c *gin.Context) (interface{}, error) {
			return schema.RegistrarQueryMsg{Prices: &schema.Empty{}}, nil
		}))
		v1.GET("/registrar/verifier", a.registrarQuery(func(c *gin.Context) (interface{}, error) {
			return schema.RegistrarQueryMsg{Verifier: &schema.Empty{}}, nil
		}))
		v1.GET("/registrar/has/:name", a.registrarQuery(func(c *gin.Context) (interface{}, error) {
			return schema.RegistrarQueryMsg{HasRegister: &schema.NameQuery{Name: c.Param("name")}}, nil
		}))
		v1.GET("/registrar/registration/:name", a.registrarQuery(func(c *gin.Context) (interface{}, error) {
			return schema.RegistrarQueryMsg{Registration: &schema.NameQuery{Name: c.Param("name")}}, nil
		}))
		v1.GET("/registrar/registrations", a.registrarQuery(func(c *gin.Context) (interface{}, error) {
			page, err := pageParams(c)
			return schema.RegistrarQueryMsg{Registrations: &page}, err
		}))
		v1.GET("/registrar/fee/:name/:durations", a.registrarQuery(func(c *gin.Context) (interface{}, error) {
			durations, err := strconv.ParseUint(c.Param("durations"), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: durations", ErrInvalidParam)
			}
			return schema.RegistrarQueryMsg{Fee: &schema.FeeQuery{Name: c.Param("name"), Durations: durations}}, nil
		}))
		v1.GET("/registrar/expired", a.getExpired)

		v1.GET("/resolver/address/:name/:prefix", a.resolverQuery(func(c *gin.Context) (interface{}, error) {
			return schema.ResolverQueryMsg{AddressOf: &schema.AddressOfQuery{PrimaryName: c.Param("name"), Bech32Prefix: c.Param("prefix")}}, nil
		}))
		v1.GET("/resolver/addresses/:name", a.resolverQuery(func(c *gin.Context) (interface{}, error) {
			page, err := pageParams(c)
			return schema.ResolverQueryMsg{AllAddressesOf: &schema.AllAddressesOfQuery{
				PrimaryName: c.Param("name"),
				StartAfter:  page.StartAfter,
				Limit:       page.Limit,
			}}, err
		}))
		v1.GET("/resolver/names/:owner", a.resolverQuery(func(c *gin.Context) (interface{}, error) {
			page, err := pageParams(c)
			return schema.ResolverQueryMsg{Names: &schema.NamesQuery{Owner: c.Param("owner"), StartAfter: page.StartAfter, Limit: page.Limit}}, err
		}))

		v1.GET("/token/:id", a.nameQuery(func(c *gin.Context) (interface{}, error) {
			return schema.NameQueryMsg{AllNftInfo: &schema.TokenIdMsg{TokenId: c.Param("id")}}, nil
		}))
		v1.GET("/tokens/:owner", a.nameQuery(func(c *gin.Context) (interface{}, error) {
			page, err := pageParams(c)
			return schema.NameQueryMsg{Tokens: &schema.TokensQuery{Owner: c.Param("owner"), StartAfter: page.StartAfter, Limit: page.Limit}}, err
		}))
	}
	return nil
}

func readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, ErrNullBody
	}
	defer c.Request.Body.Close()
	by, err := io.ReadAll(io.LimitReader(c.Request.Body, schema.AllowMaxReqBodySize+1))
	if err != nil {
		return nil, err
	}
	if len(by) == 0 {
		return nil, ErrNullBody
	}
	if len(by) > schema.AllowMaxReqBodySize {
		return nil, ErrBodyTooLarge
	}
	return by, nil
}

func (a *Arname) submitTx(c *gin.Context) {
	by, err := readBody(c)
	if err != nil {
		errorResponse(c, err)
		return
	}
	stx := schema.SignedTx{}
	if err := json.Unmarshal(by, &stx); err != nil {
		errorResponse(c, fmt.Errorf("%w: %v", schema.ErrMalformedMsg, err))
		return
	}
	res, err := a.DeliverTx(stx)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *Arname) query(c *gin.Context) {
	by, err := readBody(c)
	if err != nil {
		errorResponse(c, err)
		return
	}
	req := schema.ReqQuery{}
	if err := json.Unmarshal(by, &req); err != nil {
		errorResponse(c, fmt.Errorf("%w: %v", schema.ErrMalformedMsg, err))
		return
	}
	a.queryResponse(c, c.Param("contract"), req.Msg)
}

func (a *Arname) queryResponse(c *gin.Context, contract string, msg []byte) {
	res, err := a.Query(contract, msg)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", res)
}

func (a *Arname) contractQuery(contract func() string, build func(c *gin.Context) (interface{}, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		msg, err := build(c)
		if err != nil {
			errorResponse(c, err)
			return
		}
		by, err := json.Marshal(msg)
		if err != nil {
			errorResponse(c, err)
			return
		}
		a.queryResponse(c, contract(), by)
	}
}

func (a *Arname) registrarQuery(build func(c *gin.Context) (interface{}, error)) gin.HandlerFunc {
	return a.contractQuery(func() string { return a.registrar }, build)
}

func (a *Arname) nameQuery(build func(c *gin.Context) (interface{}, error)) gin.HandlerFunc {
	return a.contractQuery(func() string { return a.nameContract }, build)
}

func (a *Arname) resolverQuery(build func(c *gin.Context) (interface{}, error)) gin.HandlerFunc {
	return a.contractQuery(func() string { return a.resolver }, build)
}

// pageParams reads ?start_after=&limit=.
func pageParams(c *gin.Context) (schema.PageQuery, error) {
	page := schema.PageQuery{}
	if s, ok := c.GetQuery("start_after"); ok {
		page.StartAfter = &s
	}
	if l, ok := c.GetQuery("limit"); ok {
		n, err := strconv.ParseUint(l, 10, 32)
		if err != nil {
			return page, fmt.Errorf("%w: limit", ErrInvalidParam)
		}
		limit := uint32(n)
		page.Limit = &limit
	}
	return page, nil
}

func (a *Arname) getInfo(c *gin.Context) {
	height, blockTime, err := a.host.Block()
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, schema.RespInfo{
		ChainId:      a.host.ChainId(),
		Bech32Prefix: a.host.Prefix(),
		Height:       height,
		BlockTime:    blockTime,
		Registrar:    a.registrar,
		NameContract: a.nameContract,
		Resolver:     a.resolver,
	})
}

func (a *Arname) getAccount(c *gin.Context) {
	acc, err := a.host.Account(c.Param("address"))
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, schema.RespAccount{Address: acc.Address, Sequence: acc.Sequence})
}

func (a *Arname) getBalance(c *gin.Context) {
	addr := c.Param("address")
	bals, err := a.host.Balances(addr)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, schema.RespBalance{Address: addr, Balances: bals})
}

func (a *Arname) getExpired(c *gin.Context) {
	now, names := a.expired.Get()
	c.JSON(http.StatusOK, schema.RespExpired{Now: now, Names: names})
}

func (a *Arname) getTxs(c *gin.Context) {
	if a.wdb == nil {
		errorResponse(c, fmt.Errorf("%w: tx history disabled", schema.ErrNotFound))
		return
	}
	cursor, err := strconv.ParseUint(c.DefaultQuery("cursor", "0"), 10, 64)
	if err != nil {
		errorResponse(c, fmt.Errorf("%w: cursor", ErrInvalidParam))
		return
	}
	page, err := pageParams(c)
	if err != nil {
		errorResponse(c, err)
		return
	}
	txs, err := a.wdb.GetTxsBySender(c.Param("sender"), uint(cursor), schema.PageLimit(page.Limit))
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, schema.RespTxs{Txs: txs})
}

func (a *Arname) getTx(c *gin.Context) {
	if a.wdb == nil {
		errorResponse(c, fmt.Errorf("%w: tx history disabled", schema.ErrNotFound))
		return
	}
	rec, err := a.wdb.GetTx(c.Param("hash"))
	if err != nil {
		if !errors.Is(err, schema.ErrNotExist) {
			log.Error("a.wdb.GetTx", "err", err)
		}
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
